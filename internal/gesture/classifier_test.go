package gesture

import (
	"fmt"
	"testing"

	"github.com/ayusman/handsnap/internal/detector"
)

// buildHand returns a hand whose wrist sits at wristX. Fingers flagged in
// extended get their tip above the PIP joint; the thumb tip sits at
// thumbTipX with its MCP joint at thumbJointX.
func buildHand(wristX, thumbTipX, thumbJointX float64, extended [4]bool) detector.HandLandmarks {
	hand := detector.HandLandmarks{Handedness: "Right", Score: 0.9}
	hand.Points[detector.Wrist] = detector.Point3D{X: wristX, Y: 0.9}
	hand.Points[detector.ThumbMCP] = detector.Point3D{X: thumbJointX, Y: 0.7}
	hand.Points[detector.ThumbTip] = detector.Point3D{X: thumbTipX, Y: 0.65}

	for i, tip := range detector.FingerTips {
		hand.Points[tip-2] = detector.Point3D{X: wristX, Y: 0.5}
		if extended[i] {
			hand.Points[tip] = detector.Point3D{X: wristX, Y: 0.3}
		} else {
			hand.Points[tip] = detector.Point3D{X: wristX, Y: 0.6}
		}
	}
	return hand
}

func TestClassify_FingerCountGrid(t *testing.T) {
	sides := []struct {
		name        string
		wristX      float64
		foldedTip   float64
		extendedTip float64
	}{
		// Right branch: thumb extended when tip.X > joint.X (joint at 0.4).
		{name: "right branch", wristX: 0.3, foldedTip: 0.35, extendedTip: 0.45},
		// Left branch: thumb extended when tip.X < joint.X (joint at 0.4).
		{name: "left branch", wristX: 0.7, foldedTip: 0.45, extendedTip: 0.35},
	}

	for _, side := range sides {
		for mask := 0; mask < 16; mask++ {
			var extended [4]bool
			count := 0
			for i := range extended {
				extended[i] = mask&(1<<i) != 0
				if extended[i] {
					count++
				}
			}

			for _, thumbOut := range []bool{false, true} {
				tipX := side.foldedTip
				if thumbOut {
					tipX = side.extendedTip
				}
				hand := buildHand(side.wristX, tipX, 0.4, extended)
				want := count == 2 && !thumbOut

				name := fmt.Sprintf("%s/fingers=%04b/thumb=%v", side.name, mask, thumbOut)
				t.Run(name, func(t *testing.T) {
					if got := Classify(&hand); got != want {
						t.Errorf("Classify() = %v, want %v", got, want)
					}

					r := Analyze(&hand)
					if r.ExtendedFingers != count {
						t.Errorf("ExtendedFingers = %d, want %d", r.ExtendedFingers, count)
					}
					if r.ThumbExtended != thumbOut {
						t.Errorf("ThumbExtended = %v, want %v", r.ThumbExtended, thumbOut)
					}
				})
			}
		}
	}
}

func TestAnalyze_ThumbSide(t *testing.T) {
	allUp := [4]bool{true, true, true, true}

	tests := []struct {
		name      string
		wristX    float64
		tipX      float64
		jointX    float64
		wantRight bool
		wantThumb bool
	}{
		{name: "right branch tip right of joint", wristX: 0.3, tipX: 0.5, jointX: 0.4, wantRight: true, wantThumb: true},
		{name: "right branch tip left of joint", wristX: 0.3, tipX: 0.3, jointX: 0.4, wantRight: true, wantThumb: false},
		{name: "left branch tip left of joint", wristX: 0.7, tipX: 0.6, jointX: 0.7, wantRight: false, wantThumb: true},
		{name: "left branch tip right of joint", wristX: 0.7, tipX: 0.8, jointX: 0.7, wantRight: false, wantThumb: false},
		{name: "wrist exactly at center is left branch", wristX: 0.5, tipX: 0.4, jointX: 0.5, wantRight: false, wantThumb: true},
		{name: "tip level with joint is folded", wristX: 0.3, tipX: 0.4, jointX: 0.4, wantRight: true, wantThumb: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Thumb result must not depend on the other fingers.
			for _, fingers := range [][4]bool{{}, allUp, {true, true, false, false}} {
				hand := buildHand(tt.wristX, tt.tipX, tt.jointX, fingers)
				r := Analyze(&hand)

				if r.RightSide != tt.wantRight {
					t.Errorf("RightSide = %v, want %v", r.RightSide, tt.wantRight)
				}
				if r.ThumbExtended != tt.wantThumb {
					t.Errorf("ThumbExtended = %v, want %v (fingers %v)", r.ThumbExtended, tt.wantThumb, fingers)
				}
			}
		})
	}
}

func TestClassify_Presets(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want bool
	}{
		{name: "two fingers", hand: detector.TwoFingerLandmarks(), want: true},
		{name: "two fingers mirrored", hand: detector.TwoFingerLandmarks().MirrorX(), want: true},
		{name: "fist", hand: detector.FistLandmarks(), want: false},
		{name: "open palm", hand: detector.OpenPalmLandmarks(), want: false},
		{name: "open palm mirrored", hand: detector.OpenPalmLandmarks().MirrorX(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(&tt.hand); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	if Classify(nil) {
		t.Error("Classify(nil) should be false")
	}
	if r := Analyze(nil); r != (Reading{}) {
		t.Errorf("Analyze(nil) = %+v, want zero reading", r)
	}
}

func TestDetect(t *testing.T) {
	twoFingers := detector.TwoFingerLandmarks()
	palm := detector.OpenPalmLandmarks()

	tests := []struct {
		name  string
		hands []detector.HandLandmarks
		want  bool
	}{
		{name: "nil hands", hands: nil, want: false},
		{name: "empty hands", hands: []detector.HandLandmarks{}, want: false},
		{name: "single matching hand", hands: []detector.HandLandmarks{twoFingers}, want: true},
		{name: "first hand matches", hands: []detector.HandLandmarks{twoFingers, palm}, want: true},
		{name: "only second hand matches", hands: []detector.HandLandmarks{palm, twoFingers}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.hands); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}
