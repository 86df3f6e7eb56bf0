/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package scoring turns a price guess into points.
package scoring

import (
	"errors"
	"math"
)

const (
	// MinPoints is awarded for any guess that earns neither bonus nor perfect.
	MinPoints = 10

	// BonusPoints is awarded for a guess within BonusPercent of the price.
	BonusPoints = 110

	// PerfectPoints is awarded for an exact guess.
	PerfectPoints = 120

	// BonusPercent is the exclusive upper bound on percent-off for a bonus.
	BonusPercent = 5.0
)

// ErrInvalidPrice is returned when the actual price cannot be scored against.
var ErrInvalidPrice = errors.New("actual price must be a positive finite number")

// ErrInvalidGuess is returned for a NaN or infinite guess.
var ErrInvalidGuess = errors.New("guess must be a finite number")

// Result is the outcome of one guess.
type Result struct {
	Points   int     `json:"points"`
	Accuracy float64 `json:"accuracy"`
	Bonus    bool    `json:"bonus"`
	Perfect  bool    `json:"perfect"`
}

// Score rates guess against actual.
//
// Accuracy is 100 minus the percent off, rounded to two decimals, and goes
// negative once a guess is more than double the price. Points are the same
// ratio scaled to 100 and floored at MinPoints, unless the guess is exact
// (PerfectPoints) or under BonusPercent away (BonusPoints).
func Score(actual, guess float64) (Result, error) {
	if !(actual > 0) || math.IsInf(actual, 0) {
		return Result{}, ErrInvalidPrice
	}
	if math.IsNaN(guess) || math.IsInf(guess, 0) {
		return Result{}, ErrInvalidGuess
	}

	diff := math.Abs(actual - guess)
	percentOff := diff / actual * 100
	accuracy := (actual - diff) / actual * 100

	points := math.Max(MinPoints, 100*(1-diff/actual))

	var res Result
	switch {
	case percentOff == 0:
		points = PerfectPoints
		res.Perfect = true
	case percentOff < BonusPercent:
		points = BonusPoints
		res.Bonus = true
	}

	res.Points = int(roundHalfUp(points))
	res.Accuracy = roundHalfUp(accuracy*100) / 100

	return res, nil
}

// roundHalfUp rounds halves toward positive infinity so negative accuracies
// round the same way clients display them.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
