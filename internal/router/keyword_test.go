package router

import (
	"testing"

	"github.com/casaflow/casaflow/internal/domain"
)

func TestClassifyKeywords_Create(t *testing.T) {
	tests := []string{
		"add 123 Main St to the pipeline",
		"agrega la propiedad en 45 Calle Sol",
		"we bought 789 Oak Avenue yesterday",
		"registra 12 Avenida Central por favor",
	}
	for _, text := range tests {
		cls := ClassifyKeywords(text)
		if cls.Intent != domain.IntentPropertyCreate {
			t.Errorf("%q: intent = %s, want %s", text, cls.Intent, domain.IntentPropertyCreate)
			continue
		}
		if cls.Confidence < 0.90 {
			t.Errorf("%q: confidence = %.2f, want >= 0.90", text, cls.Confidence)
		}
		if cls.TargetAgent != domain.AgentProperty {
			t.Errorf("%q: agent = %s, want %s", text, cls.TargetAgent, domain.AgentProperty)
		}
	}
}

func TestClassifyKeywords_AddressWithoutVerbIsNotCreate(t *testing.T) {
	cls := ClassifyKeywords("123 Main St")
	if cls.Intent == domain.IntentPropertyCreate {
		t.Fatal("address without a creation verb must not classify as create")
	}
}

func TestClassifyKeywords_List(t *testing.T) {
	for _, text := range []string{"show me all the houses", "lista mis propiedades"} {
		cls := ClassifyKeywords(text)
		if cls.Intent != domain.IntentPropertyList {
			t.Errorf("%q: intent = %s, want %s", text, cls.Intent, domain.IntentPropertyList)
		}
		if cls.Confidence != confList {
			t.Errorf("%q: confidence = %.2f, want %.2f", text, cls.Confidence, confList)
		}
	}
}

func TestClassifyKeywords_Delete(t *testing.T) {
	cls := ClassifyKeywords("elimina esta propiedad")
	if cls.Intent != domain.IntentPropertyDelete {
		t.Fatalf("intent = %s, want %s", cls.Intent, domain.IntentPropertyDelete)
	}
	if cls.Confidence != 0.90 {
		t.Fatalf("confidence = %.2f, want 0.90", cls.Confidence)
	}
	if cls.TargetAgent != domain.AgentProperty {
		t.Fatalf("agent = %s, want %s", cls.TargetAgent, domain.AgentProperty)
	}
}

func TestClassifyKeywords_DeleteDocumentIsExcluded(t *testing.T) {
	cls := ClassifyKeywords("elimina el documento de la propiedad")
	if cls.Intent == domain.IntentPropertyDelete {
		t.Fatal("document mentions must not classify as property.delete")
	}
}

func TestClassifyKeywords_DeleteVerbMustLeadMessage(t *testing.T) {
	cls := ClassifyKeywords("no quiero que se elimine la propiedad")
	if cls.Intent == domain.IntentPropertyDelete {
		t.Fatal("delete verb buried mid-sentence must not classify as delete")
	}
}

func TestClassifyKeywords_Switch(t *testing.T) {
	for _, text := range []string{"switch to the blue trailer", "cambia a la otra casa"} {
		cls := ClassifyKeywords(text)
		if cls.Intent != domain.IntentPropertySwitch {
			t.Errorf("%q: intent = %s, want %s", text, cls.Intent, domain.IntentPropertySwitch)
		}
		if cls.Confidence != confSwitch {
			t.Errorf("%q: confidence = %.2f, want %.2f", text, cls.Confidence, confSwitch)
		}
	}
}

func TestClassifyKeywords_NoMatch(t *testing.T) {
	cls := ClassifyKeywords("how was your weekend?")
	if cls.Intent != domain.IntentGeneralConversation {
		t.Fatalf("intent = %s, want %s", cls.Intent, domain.IntentGeneralConversation)
	}
	if cls.Confidence != 0.50 {
		t.Fatalf("confidence = %.2f, want exactly 0.50", cls.Confidence)
	}
	if cls.TargetAgent != domain.AgentMain {
		t.Fatalf("agent = %s, want %s", cls.TargetAgent, domain.AgentMain)
	}
	if cls.Confidence >= llmFallbackThreshold {
		t.Fatal("no-match confidence must sit below the llm fallback threshold")
	}
}
