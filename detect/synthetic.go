package detect

import "math"

// SyntheticHands returns two plausible hands whose fingers flex over time.
// Used by headless runs and tests when no recorded feed is available.
func SyntheticHands(t float64) []Hand {
	return []Hand{
		syntheticHand(0.3, 0.6, t, 1),
		syntheticHand(0.7, 0.6, t+1.7, -1),
	}
}

// syntheticHand builds a 21-landmark hand with its wrist at (wx, wy).
// mirror flips the finger fan for the other hand.
func syntheticHand(wx, wy, t float64, mirror float64) Hand {
	const seg = 0.03

	h := make(Hand, LandmarksPerHand)
	h[0] = Landmark{X: wx, Y: wy}

	for finger := 0; finger < 5; finger++ {
		// Fan the fingers upwards; the thumb sits lowest.
		dir := -math.Pi/2 + mirror*(float64(finger)-2)*0.35
		bend := 0.25 + 0.45*(0.5+0.5*math.Sin(1.3*t+float64(finger)*0.9))

		x, y := wx, wy
		for joint := 0; joint < 4; joint++ {
			x += seg * math.Cos(dir)
			y += seg * math.Sin(dir)
			h[1+finger*4+joint] = Landmark{X: x, Y: y}
			dir += mirror * bend
		}
	}
	return h
}
