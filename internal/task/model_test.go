package task

import "testing"

func TestNormalizeStatusTranslatesLegacyAliases(t *testing.T) {
	cases := map[string]string{
		"":               StatusOpen,
		"aberta":         StatusOpen,
		"pendente":       StatusPending,
		"deu_ruim":       StatusBlocked,
		"feito":          StatusDone,
		"feita":          StatusDone,
		"feito_detalhes": StatusDone,
		"  DONE  ":       StatusDone,
		"open":           StatusOpen,
	}

	for in, want := range cases {
		if got := NormalizeStatus(in); got != want {
			t.Errorf("NormalizeStatus(%q) = %q, esperava %q", in, got, want)
		}
	}
}

func TestNormalizePriorityTranslatesLegacyAliases(t *testing.T) {
	cases := map[string]string{
		"":       PriorityMedium,
		"baixa":  PriorityLow,
		"media":  PriorityMedium,
		"alta":   PriorityHigh,
		"URGENT": PriorityUrgent,
	}

	for in, want := range cases {
		if got := NormalizePriority(in); got != want {
			t.Errorf("NormalizePriority(%q) = %q, esperava %q", in, got, want)
		}
	}
}

func TestPriorityRankUnknownFallsBackToMedium(t *testing.T) {
	if PriorityRank("urgent") <= PriorityRank("high") {
		t.Fatal("urgent deveria pesar mais que high")
	}
	if PriorityRank("high") <= PriorityRank("medium") {
		t.Fatal("high deveria pesar mais que medium")
	}
	if PriorityRank("qualquer-coisa") != PriorityRank("medium") {
		t.Fatal("prioridade desconhecida assume o peso de medium")
	}
}

func TestIsTerminalStatus(t *testing.T) {
	for _, s := range []string{"done", "blocked", "feito", "deu_ruim"} {
		if !IsTerminalStatus(s) {
			t.Errorf("%q deveria ser terminal", s)
		}
	}
	for _, s := range []string{"open", "pending", "aberta"} {
		if IsTerminalStatus(s) {
			t.Errorf("%q não deveria ser terminal", s)
		}
	}
}

func TestBulkPatchIsZero(t *testing.T) {
	if !(BulkPatch{}).IsZero() {
		t.Fatal("patch vazio deveria ser zero")
	}
	done := StatusDone
	if (BulkPatch{Status: &done}).IsZero() {
		t.Fatal("patch com status não é zero")
	}
	if (BulkPatch{ClearAssignee: true}).IsZero() {
		t.Fatal("limpar responsável conta como mutação")
	}
}
