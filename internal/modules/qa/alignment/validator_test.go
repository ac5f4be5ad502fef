package alignment

import "testing"

func TestValidateNeutralTextKeepsFullScore(t *testing.T) {
	v := NewValidator(0.85)
	res := v.Validate("Fasting prepares the heart for prayer and almsgiving.", Input{})
	if res.Score != 1.0 {
		t.Fatalf("expected score 1.0 for neutral text, got %.2f", res.Score)
	}
	if !res.IsAligned {
		t.Fatal("expected aligned")
	}
}

func TestValidateMissingDoctrinalEmphasis(t *testing.T) {
	v := NewValidator(0.85)
	res := v.Validate("The natures of Christ were debated by many councils.", Input{})
	if res.Score >= 1.0 {
		t.Fatalf("expected penalty for missing emphasis, got %.2f", res.Score)
	}
	if len(res.Issues) == 0 {
		t.Fatal("expected an issue naming the missing emphasis")
	}
}

func TestValidateEmphasisPresentNoPenalty(t *testing.T) {
	v := NewValidator(0.85)
	res := v.Validate("The natures of Christ are one united nature, Tewahedo, without separation.", Input{})
	if len(res.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", res.Issues)
	}
}

func TestValidateCounterDoctrineWithoutCondemnation(t *testing.T) {
	v := NewValidator(0.85)
	res := v.Validate("Arianism teaches that the Son is a created being.", Input{})
	if len(res.Warnings) == 0 {
		t.Fatal("expected warning for unsanctioned counter-doctrine mention")
	}
	if res.Score > 1.0-counterDoctrinePenalty {
		t.Fatalf("expected counter-doctrine penalty, got %.2f", res.Score)
	}
}

func TestValidateCounterDoctrineCondemnedIsFine(t *testing.T) {
	v := NewValidator(0.85)
	res := v.Validate("Arianism is a heresy condemned at the Council of Nicaea.", Input{})
	if len(res.Warnings) != 0 {
		t.Fatalf("condemned mention must not warn, got %v", res.Warnings)
	}
}

func TestValidateEcumenicalCompromise(t *testing.T) {
	v := NewValidator(0.85)
	res := v.Validate("In the end all paths lead to God, so doctrine is not important.", Input{})
	if len(res.Issues) < 2 {
		t.Fatalf("expected two compromise issues, got %v", res.Issues)
	}
}

func TestValidateSourceBonusCapped(t *testing.T) {
	v := NewValidator(0.85)
	few := v.Validate("As Matthew records, baptism opens the way.", Input{})
	many := v.Validate("Genesis, Exodus, Psalm, Isaiah, Matthew, Mark, Luke and John all witness to this.", Input{})
	if many.Score < few.Score {
		t.Fatalf("more sources should not score lower: %.2f < %.2f", many.Score, few.Score)
	}
	if many.Score > 1.0 {
		t.Fatalf("score must be clamped to 1.0, got %.2f", many.Score)
	}
}

func TestValidateFocusPointsRewarded(t *testing.T) {
	v := NewValidator(0.85)
	in := Input{FocusPoints: []string{"baptism", "chrismation"}}
	// Baseline below 1.0 so the bonus is visible past the clamp.
	with := v.Validate("The natures of Christ were debated. Baptism and chrismation join the believer.", in)
	without := v.Validate("The natures of Christ were debated. The believer is joined to the Church.", in)
	if with.Score <= without.Score {
		t.Fatalf("focus point coverage should raise the score: %.2f <= %.2f", with.Score, without.Score)
	}
}

func TestValidateScoreClampedLow(t *testing.T) {
	v := NewValidator(0.85)
	res := v.Validate(
		"All religions are equally true. All churches teach the same. It does not matter which church. "+
			"Any denomination is fine. All paths lead to god. Doctrine is not important. "+
			"Arianism, nestorianism, eutychianism, monophysitism, gnosticism and pelagianism are interesting views.",
		Input{})
	if res.Score < 0 {
		t.Fatalf("score must not go below 0, got %.2f", res.Score)
	}
	if res.IsAligned {
		t.Fatal("heavily penalized answer must not be aligned")
	}
}

func TestValidatePreferredTerminology(t *testing.T) {
	v := NewValidator(0.85)
	// Baseline below 1.0 so the bonus is visible past the clamp.
	preferred := v.Validate("The natures of Christ were debated. Timkat celebrates the baptism of Christ.", Input{})
	variant := v.Validate("The natures of Christ were debated. Epiphany celebrates the baptism of Christ.", Input{})
	if preferred.Score <= variant.Score {
		t.Fatalf("preferred term should outscore the variant: %.2f <= %.2f", preferred.Score, variant.Score)
	}
	if len(variant.Suggestions) == 0 {
		t.Fatal("variant usage should suggest preferred terminology")
	}
}
