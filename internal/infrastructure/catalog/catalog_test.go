package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

func TestLoadPreservesDeclarationOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	content := `policies:
  - policy_id: car_policy_2
    policy_type: car
    title: Liability-Only Auto Insurance
    company_name: BudgetAuto Insurance
    website: https://www.budgetauto.com/liability
  - policy_id: health_policy_1
    policy_type: health
    title: Comprehensive Health Insurance Plan
    company_name: HealthGuard Insurance
    website: https://www.healthguard.com/comprehensive-plan
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	all := cat.All()
	if len(all) != 2 {
		t.Fatalf("got %d policies, want 2", len(all))
	}
	if all[0].PolicyID != "car_policy_2" || all[1].PolicyID != "health_policy_1" {
		t.Fatalf("order not preserved: %+v", all)
	}
}

func TestByTypeAndByID(t *testing.T) {
	cat, err := New([]domain.Policy{
		{PolicyID: "health_policy_1", PolicyType: "health", Title: "Comprehensive"},
		{PolicyID: "bike_policy_2", PolicyType: "bike", Title: "Theft Protection"},
		{PolicyID: "health_policy_2", PolicyType: "health", Title: "Basic"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	health := cat.ByType("health")
	if len(health) != 2 || health[0].PolicyID != "health_policy_1" {
		t.Fatalf("ByType(health) = %+v", health)
	}
	if got := cat.ByType("car"); len(got) != 0 {
		t.Fatalf("ByType(car) should be empty, got %+v", got)
	}

	p, ok := cat.ByID("bike_policy_2")
	if !ok || p.Title != "Theft Protection" {
		t.Fatalf("ByID(bike_policy_2) = %+v, %v", p, ok)
	}
	if _, ok := cat.ByID("missing"); ok {
		t.Fatal("ByID(missing) should report absence")
	}
}

func TestNewRejectsInvalidEntries(t *testing.T) {
	if _, err := New([]domain.Policy{{PolicyType: "health"}}); err == nil {
		t.Fatal("missing policy_id should fail validation")
	}
	if _, err := New([]domain.Policy{{PolicyID: "p1"}}); err == nil {
		t.Fatal("missing policy_type should fail validation")
	}
	if _, err := New([]domain.Policy{
		{PolicyID: "p1", PolicyType: "health"},
		{PolicyID: "p1", PolicyType: "car"},
	}); err == nil {
		t.Fatal("duplicate policy_id should fail validation")
	}
}
