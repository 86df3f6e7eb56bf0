/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scoring

import (
	"errors"
	"math"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		actual   float64
		guess    float64
		points   int
		accuracy float64
		bonus    bool
		perfect  bool
	}{
		{name: "exact", actual: 485000, guess: 485000, points: 120, accuracy: 100, perfect: true},
		{name: "within five percent", actual: 400000, guess: 390000, points: 110, accuracy: 97.5, bonus: true},
		{name: "just under five percent over", actual: 100000, guess: 104999, points: 110, accuracy: 95.0, bonus: true},
		{name: "exactly five percent", actual: 100000, guess: 95000, points: 95, accuracy: 95},
		{name: "twenty percent low", actual: 500000, guess: 400000, points: 80, accuracy: 80},
		{name: "zero guess", actual: 300000, guess: 0, points: 10, accuracy: 0},
		{name: "ten times", actual: 100000, guess: 1000000, points: 10, accuracy: -800},
		{name: "rounding", actual: 300000, guess: 200000, points: 67, accuracy: 66.67},
		{name: "negative accuracy rounds up", actual: 100000, guess: 212345, points: 10, accuracy: -12.34},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.actual, tt.guess)
			if err != nil {
				t.Fatalf("score: %v", err)
			}
			if got.Points != tt.points {
				t.Fatalf("points = %d, want %d", got.Points, tt.points)
			}
			if math.Abs(got.Accuracy-tt.accuracy) > 1e-9 {
				t.Fatalf("accuracy = %v, want %v", got.Accuracy, tt.accuracy)
			}
			if got.Bonus != tt.bonus || got.Perfect != tt.perfect {
				t.Fatalf("bonus/perfect = %v/%v, want %v/%v", got.Bonus, got.Perfect, tt.bonus, tt.perfect)
			}
		})
	}
}

func TestScoreFloorHolds(t *testing.T) {
	for _, actual := range []float64{1, 1000, 285000, 875000, 12_500_000} {
		for _, factor := range []float64{0, 0.01, 0.5, 1.5, 2, 3, 10, 100} {
			res, err := Score(actual, actual*factor)
			if err != nil {
				t.Fatalf("score(%v, %v): %v", actual, actual*factor, err)
			}
			if res.Points < MinPoints {
				t.Fatalf("score(%v, %v) points = %d, below floor", actual, actual*factor, res.Points)
			}
		}
	}
}

func TestScoreRejectsInvalidPrice(t *testing.T) {
	for _, actual := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := Score(actual, 100); !errors.Is(err, ErrInvalidPrice) {
			t.Fatalf("score(%v): err = %v, want ErrInvalidPrice", actual, err)
		}
	}
	if _, err := Score(100, math.NaN()); !errors.Is(err, ErrInvalidGuess) {
		t.Fatalf("err = %v, want ErrInvalidGuess", err)
	}
}
