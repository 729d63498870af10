// Package scoring holds the pure score arithmetic shared by the game and
// quiz pipelines. Every function here is deterministic and side-effect
// free; persistence and orchestration live in internal/app.
package scoring

import "math"

// CompletionStep is the fixed completion advance per scored activity.
// Progress reflects engagement, not mastery: every activity moves the
// needle the same amount regardless of score quality.
const CompletionStep = 10

// quizPointBaseline is the per-question denominator used when turning a
// quiz score into a percentage. The denominator stays at 10 points per
// question even when questions carry other point values, so percentages
// above 100 are possible.
const quizPointBaseline = 10

// Normalize rescales a raw game score against the game's maximum to an
// integer percentage in [0,100]. Scores past the maximum clamp to 100.
// maxScore must be positive; the game catalog guarantees that.
func Normalize(raw float64, maxScore int) int {
	pct := int(math.Round(raw / float64(maxScore) * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// AdvanceCompletion returns the completion percentage after one more
// activity, capped at 100.
func AdvanceCompletion(current int) int {
	next := current + CompletionStep
	if next > 100 {
		return 100
	}
	return next
}

// RollingAverage recomputes the running mean from the previous rounded
// average rather than from the raw total. gamesPlayed is the count
// including the new activity and must be >= 1. Rounding drift across many
// updates is part of the contract; callers must not "fix" it by dividing
// the stored total instead.
func RollingAverage(oldAverage, gamesPlayed, score int) int {
	return int(math.Round(float64(oldAverage*(gamesPlayed-1)+score) / float64(gamesPlayed)))
}

// QuizPercentage reports a graded quiz score as a percentage of the
// fixed 10-points-per-answer baseline. With questions worth more than 10
// points the result exceeds 100. Zero submitted answers yields 0.
func QuizPercentage(totalScore, numAnswers int) int {
	if numAnswers == 0 {
		return 0
	}
	return int(math.Round(float64(totalScore) / float64(numAnswers*quizPointBaseline) * 100))
}
