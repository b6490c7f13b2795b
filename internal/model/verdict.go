package model

// Verdict is the caller-side classification of a score.
// The analyzer itself only produces the score; the threshold is policy.
type Verdict int

const (
	// VerdictUnclassified means no threshold was configured.
	VerdictUnclassified Verdict = iota

	// VerdictBenign means the score is below the threshold.
	VerdictBenign

	// VerdictPhishing means the score reached the threshold.
	VerdictPhishing
)

// String returns a human-readable representation of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictUnclassified:
		return "UNCLASSIFIED"
	case VerdictBenign:
		return "LIKELY BENIGN"
	case VerdictPhishing:
		return "LIKELY PHISHING"
	default:
		return "UNKNOWN"
	}
}

// Classify compares score with threshold. A threshold of zero or less
// disables classification.
func Classify(score, threshold int) Verdict {
	if threshold <= 0 {
		return VerdictUnclassified
	}
	if score >= threshold {
		return VerdictPhishing
	}
	return VerdictBenign
}
