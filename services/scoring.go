package services

import (
	"strings"

	"fight-picks-system/models"
)

// Scoring rule generations. The formula has changed over the system's lifetime;
// every stored pick score carries the version it was computed under so two
// generations are never mixed inside one leaderboard. Changing the rules means
// bumping RuleVersionCurrent and running a bulk re-score (ResultService.RecomputeAll).
const (
	// RuleVersionClassic: flat schedule — winner 1, winner+round 2,
	// winner+method 3, winner+method+round 5.
	RuleVersionClassic = 1

	// RuleVersionCurrent: base-plus-bonus — winner 2, +3 method, +5 round
	// (round bonus only on top of a correct non-decision method).
	RuleVersionCurrent = 2
)

// PickOutcome is the comparable shape of both a pick and an official result:
// winner side ("A"/"B"), method, and round (meaningless for decisions).
type PickOutcome struct {
	Winner string
	Method string
	Round  int
}

// NormalizeMethod collapses method synonyms: KO/TKO → KO, SUB/SUBMISSION → SUB,
// DEC/DECISION → DEC. Unknown values pass through uppercased.
func NormalizeMethod(method string) string {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case "KO", "TKO", "KO/TKO":
		return models.MethodKO
	case "SUB", "SUBMISSION":
		return models.MethodSub
	case "DEC", "DECISION":
		return models.MethodDec
	default:
		return strings.ToUpper(strings.TrimSpace(method))
	}
}

// ScorePick scores a pick against the official result under the current rules.
// Pure and total: it never fails, callers guarantee the result is complete.
func ScorePick(pick, result PickOutcome) int {
	return ScorePickVersion(pick, result, RuleVersionCurrent)
}

// ScorePickVersion scores under a specific rule generation. Unknown versions fall
// back to the current rules.
func ScorePickVersion(pick, result PickOutcome, version int) int {
	if version == RuleVersionClassic {
		return scoreClassic(pick, result)
	}
	return scoreCurrent(pick, result)
}

// scoreCurrent: wrong winner voids everything; correct winner is worth 2; a correct
// method adds 3; a correct round adds another 5 on top of a correct non-decision
// method. Decisions carry no round prediction, so their maximum is 5.
func scoreCurrent(pick, result PickOutcome) int {
	if pick.Winner != result.Winner {
		return 0
	}

	points := 2

	pickMethod := NormalizeMethod(pick.Method)
	resultMethod := NormalizeMethod(result.Method)

	if pickMethod == resultMethod {
		points += 3
		if resultMethod != models.MethodDec && pick.Round == result.Round {
			points += 5
		}
	}

	return points
}

// scoreClassic is the first rule generation, kept so pick scores persisted under it
// can still be reproduced: winner only 1, winner+round 2, winner+method 3 (the
// decision maximum), perfect pick 5.
func scoreClassic(pick, result PickOutcome) int {
	if pick.Winner != result.Winner {
		return 0
	}

	pickMethod := NormalizeMethod(pick.Method)
	resultMethod := NormalizeMethod(result.Method)

	if pickMethod == resultMethod {
		if resultMethod == models.MethodDec {
			return 3
		}
		if pick.Round == result.Round {
			return 5
		}
		return 3
	}

	if resultMethod != models.MethodDec && pick.Round == result.Round {
		return 2
	}

	return 1
}
