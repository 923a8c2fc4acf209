// Package gesture recognizes the two-finger capture pose from hand landmarks.
package gesture

import "github.com/ayusman/handsnap/internal/detector"

// sideSplit is the wrist X coordinate separating the two thumb branches.
// Frames are mirrored before detection, so a right hand usually shows up on
// the left half of the frame.
const sideSplit = 0.5

// TargetFingers is the number of extended non-thumb fingers in the pose.
const TargetFingers = 2

// Reading is the per-frame breakdown of a hand pose.
type Reading struct {
	RightSide       bool // wrist on the left half of the mirrored frame
	ThumbExtended   bool
	ExtendedFingers int // non-thumb fingers only
}

// Match reports whether the reading is the capture pose: exactly two
// non-thumb fingers extended and the thumb folded.
func (r Reading) Match() bool {
	return r.ExtendedFingers == TargetFingers && !r.ThumbExtended
}

// Analyze measures thumb and finger extension for a single hand.
func Analyze(hand *detector.HandLandmarks) Reading {
	var r Reading
	if hand == nil {
		return r
	}

	p := &hand.Points
	r.RightSide = p[detector.Wrist].X < sideSplit

	// Thumb extension flips with the hand side.
	if r.RightSide {
		r.ThumbExtended = p[detector.ThumbTip].X > p[detector.ThumbMCP].X
	} else {
		r.ThumbExtended = p[detector.ThumbTip].X < p[detector.ThumbMCP].X
	}

	for _, tip := range detector.FingerTips {
		if p[tip].Y < p[tip-2].Y {
			r.ExtendedFingers++
		}
	}

	return r
}

// Classify reports whether a single hand shows the capture pose.
func Classify(hand *detector.HandLandmarks) bool {
	if hand == nil {
		return false
	}
	return Analyze(hand).Match()
}

// Detect evaluates the first detected hand of a frame. Additional hands are
// ignored and an empty frame never matches.
func Detect(hands []detector.HandLandmarks) bool {
	if len(hands) == 0 {
		return false
	}
	return Classify(&hands[0])
}
