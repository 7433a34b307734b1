package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/shopspring/decimal"
)

type fakeStore struct {
	fabrics        []models.Fabric
	processed      map[string]bool
	markErr        error
	recorded       []string
	recordedCost   decimal.Decimal
	recordedUsage  models.FabricUsageMap
	inventoryCalls []string
}

func newFakeStore(fabrics ...models.Fabric) *fakeStore {
	return &fakeStore{fabrics: fabrics, processed: map[string]bool{}}
}

func (s *fakeStore) LoadFabrics(ctx context.Context) ([]models.Fabric, error) {
	return s.fabrics, nil
}

func (s *fakeStore) UpdateFabricInventory(ctx context.Context, name string, change decimal.Decimal, reason string) (*models.Fabric, *models.InventoryLog, error) {
	for i := range s.fabrics {
		if s.fabrics[i].Name == name {
			s.fabrics[i].AvailableMeters = s.fabrics[i].AvailableMeters.Add(change)
			s.inventoryCalls = append(s.inventoryCalls, fmt.Sprintf("%s:%s", name, change.String()))
			log := &models.InventoryLog{FabricId: s.fabrics[i].ID, FabricName: name, ChangeAmount: change, Reason: reason}
			return &s.fabrics[i], log, nil
		}
	}
	return nil, nil, utils.ErrorRecordNotFound
}

func (s *fakeStore) IsOrderProcessed(ctx context.Context, shopifyOrderId string) (bool, error) {
	return s.processed[shopifyOrderId], nil
}

func (s *fakeStore) MarkOrderProcessed(ctx context.Context, shopifyOrderId string, orderName string, totalFabricCost decimal.Decimal, usage models.FabricUsageMap) error {
	if s.markErr != nil {
		return s.markErr
	}
	if s.processed[shopifyOrderId] {
		return models.ErrOrderAlreadyProcessed
	}
	s.processed[shopifyOrderId] = true
	s.recorded = append(s.recorded, shopifyOrderId)
	s.recordedCost = totalFabricCost
	s.recordedUsage = usage
	return nil
}

type fakeRequirements struct {
	byProduct map[int64]string
	errs      map[int64]error
}

func (f *fakeRequirements) FetchProductRequirement(ctx context.Context, productId int64) (string, error) {
	if err := f.errs[productId]; err != nil {
		return "", err
	}
	return f.byProduct[productId], nil
}

type fakeSettings struct{}

func (fakeSettings) GetSettingDecimal(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal {
	return fallback
}

type recordingObserver struct {
	lowStock []string
	skipped  []string
	outcomes []Outcome
}

func (o *recordingObserver) LowStock(ctx context.Context, fabric models.Fabric, threshold decimal.Decimal) {
	o.lowStock = append(o.lowStock, fabric.Name)
}

func (o *recordingObserver) LineSkipped(ctx context.Context, orderId string, itemTitle string, reason string, err error) {
	o.skipped = append(o.skipped, itemTitle+": "+reason)
}

func (o *recordingObserver) ReconcileOutcome(ctx context.Context, result Result) {
	o.outcomes = append(o.outcomes, result.Outcome)
}

func newTestReconciler(store *fakeStore, reqs *fakeRequirements) (*Reconciler, *recordingObserver) {
	obs := &recordingObserver{}
	return &Reconciler{
		Store:    store,
		Products: reqs,
		Settings: fakeSettings{},
		Observer: obs,
	}, obs
}

func TestProcessOrderEventDeductsAndRecords(t *testing.T) {
	store := newFakeStore(
		models.Fabric{ID: 1, Name: "cotton", CostPerMeter: decimal.NewFromInt(50), AvailableMeters: decimal.NewFromInt(100)},
	)
	reqs := &fakeRequirements{byProduct: map[int64]string{
		101: `{"fabrics":{"cotton":2}}`,
	}}
	r, obs := newTestReconciler(store, reqs)

	result, err := r.ProcessOrderEvent(context.Background(), OrderEvent{
		OrderId:   "5001",
		OrderName: "#1001",
		LineItems: []OrderLineItem{{ProductId: 101, Title: "Shirt", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("ProcessOrderEvent: %v", err)
	}
	if result.Outcome != OutcomeProcessed {
		t.Fatalf("outcome = %s, want PROCESSED", result.Outcome)
	}
	// 3 units x 2m x 50
	if !result.TotalFabricCost.Equal(decimal.NewFromInt(300)) {
		t.Errorf("total cost = %s, want 300", result.TotalFabricCost)
	}
	if !store.fabrics[0].AvailableMeters.Equal(decimal.NewFromInt(94)) {
		t.Errorf("available = %s, want 94", store.fabrics[0].AvailableMeters)
	}
	// Usage records consumed meters as positive values; only the stock
	// delta is negative.
	if !result.FabricUsage["cotton"].Equal(decimal.NewFromInt(6)) {
		t.Errorf("usage[cotton] = %s, want 6", result.FabricUsage["cotton"])
	}
	if len(store.recorded) != 1 || store.recorded[0] != "5001" {
		t.Errorf("recorded orders = %v", store.recorded)
	}
	if len(obs.outcomes) != 1 || obs.outcomes[0] != OutcomeProcessed {
		t.Errorf("observer outcomes = %v", obs.outcomes)
	}
}

func TestProcessOrderEventDuplicateIsNoOp(t *testing.T) {
	store := newFakeStore(
		models.Fabric{ID: 1, Name: "cotton", CostPerMeter: decimal.NewFromInt(50), AvailableMeters: decimal.NewFromInt(100)},
	)
	store.processed["5001"] = true
	reqs := &fakeRequirements{byProduct: map[int64]string{101: `{"fabrics":{"cotton":2}}`}}
	r, obs := newTestReconciler(store, reqs)

	result, err := r.ProcessOrderEvent(context.Background(), OrderEvent{
		OrderId:   "5001",
		OrderName: "#1001",
		LineItems: []OrderLineItem{{ProductId: 101, Title: "Shirt", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("ProcessOrderEvent: %v", err)
	}
	if result.Outcome != OutcomeDuplicate {
		t.Fatalf("outcome = %s, want DUPLICATE", result.Outcome)
	}
	if len(store.inventoryCalls) != 0 {
		t.Errorf("duplicate order must not touch inventory, got %v", store.inventoryCalls)
	}
	if len(obs.outcomes) != 1 || obs.outcomes[0] != OutcomeDuplicate {
		t.Errorf("observer outcomes = %v", obs.outcomes)
	}
}

func TestProcessOrderEventSkipsBadLineItems(t *testing.T) {
	store := newFakeStore(
		models.Fabric{ID: 1, Name: "cotton", CostPerMeter: decimal.NewFromInt(50), AvailableMeters: decimal.NewFromInt(100)},
	)
	reqs := &fakeRequirements{
		byProduct: map[int64]string{
			101: `{"fabrics":{"cotton":1}}`,
			102: `not valid json`,
			103: "",
		},
		errs: map[int64]error{104: errors.New("shopify timeout")},
	}
	r, obs := newTestReconciler(store, reqs)

	result, err := r.ProcessOrderEvent(context.Background(), OrderEvent{
		OrderId:   "5002",
		OrderName: "#1002",
		LineItems: []OrderLineItem{
			{ProductId: 101, Title: "Shirt", Quantity: 1},
			{ProductId: 102, Title: "Broken Metafield", Quantity: 1},
			{ProductId: 103, Title: "No Requirement", Quantity: 1},
			{ProductId: 104, Title: "Unreachable", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("ProcessOrderEvent: %v", err)
	}
	if result.Outcome != OutcomeProcessed {
		t.Fatalf("outcome = %s, want PROCESSED despite skipped items", result.Outcome)
	}
	if !result.TotalFabricCost.Equal(decimal.NewFromInt(50)) {
		t.Errorf("total cost = %s, want 50 (only the parseable item counts)", result.TotalFabricCost)
	}
	if len(obs.skipped) != 3 {
		t.Errorf("skipped lines = %v, want 3 entries", obs.skipped)
	}
	if len(store.inventoryCalls) != 1 {
		t.Errorf("inventory calls = %v, want 1", store.inventoryCalls)
	}
}

func TestProcessOrderEventUnknownFabricSkipped(t *testing.T) {
	store := newFakeStore(
		models.Fabric{ID: 1, Name: "cotton", CostPerMeter: decimal.NewFromInt(50), AvailableMeters: decimal.NewFromInt(100)},
	)
	reqs := &fakeRequirements{byProduct: map[int64]string{
		101: `{"fabrics":{"cotton":1,"velvet":4}}`,
	}}
	r, obs := newTestReconciler(store, reqs)

	result, err := r.ProcessOrderEvent(context.Background(), OrderEvent{
		OrderId:   "5003",
		OrderName: "#1003",
		LineItems: []OrderLineItem{{ProductId: 101, Title: "Jacket", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("ProcessOrderEvent: %v", err)
	}
	if _, ok := result.FabricUsage["velvet"]; ok {
		t.Error("unknown fabric must not appear in usage")
	}
	if !result.FabricUsage["cotton"].Equal(decimal.NewFromInt(1)) {
		t.Errorf("usage[cotton] = %s, want 1", result.FabricUsage["cotton"])
	}
	found := false
	for _, s := range obs.skipped {
		if s == "Jacket: fabric not found: velvet" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a fabric-not-found skip, got %v", obs.skipped)
	}
}

func TestProcessOrderEventLowStockSignal(t *testing.T) {
	store := newFakeStore(
		models.Fabric{ID: 1, Name: "cotton", CostPerMeter: decimal.NewFromInt(50), AvailableMeters: decimal.NewFromInt(11)},
		models.Fabric{ID: 2, Name: "lining", CostPerMeter: decimal.NewFromInt(20), AvailableMeters: decimal.NewFromInt(12)},
	)
	reqs := &fakeRequirements{byProduct: map[int64]string{
		// cotton drops to 9 (below default threshold 10), lining to exactly 10.
		101: `{"fabrics":{"cotton":2,"lining":2}}`,
	}}
	r, obs := newTestReconciler(store, reqs)

	_, err := r.ProcessOrderEvent(context.Background(), OrderEvent{
		OrderId:   "5004",
		OrderName: "#1004",
		LineItems: []OrderLineItem{{ProductId: 101, Title: "Dress", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("ProcessOrderEvent: %v", err)
	}
	if len(obs.lowStock) != 1 || obs.lowStock[0] != "cotton" {
		t.Errorf("low stock signals = %v, want only cotton (at-threshold is not low)", obs.lowStock)
	}
}

func TestProcessOrderEventLostRecordRace(t *testing.T) {
	store := newFakeStore(
		models.Fabric{ID: 1, Name: "cotton", CostPerMeter: decimal.NewFromInt(50), AvailableMeters: decimal.NewFromInt(100)},
	)
	store.markErr = models.ErrOrderAlreadyProcessed
	reqs := &fakeRequirements{byProduct: map[int64]string{101: `{"fabrics":{"cotton":2}}`}}
	r, _ := newTestReconciler(store, reqs)

	result, err := r.ProcessOrderEvent(context.Background(), OrderEvent{
		OrderId:   "5005",
		OrderName: "#1005",
		LineItems: []OrderLineItem{{ProductId: 101, Title: "Shirt", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("losing the record race must not be an error: %v", err)
	}
	if result.Outcome != OutcomeDuplicate {
		t.Errorf("outcome = %s, want DUPLICATE", result.Outcome)
	}
}

func TestProcessOrderEventZeroQuantityDefaultsToOne(t *testing.T) {
	store := newFakeStore(
		models.Fabric{ID: 1, Name: "cotton", CostPerMeter: decimal.NewFromInt(50), AvailableMeters: decimal.NewFromInt(100)},
	)
	reqs := &fakeRequirements{byProduct: map[int64]string{101: `{"fabrics":{"cotton":2}}`}}
	r, _ := newTestReconciler(store, reqs)

	result, err := r.ProcessOrderEvent(context.Background(), OrderEvent{
		OrderId:   "5006",
		OrderName: "#1006",
		LineItems: []OrderLineItem{{ProductId: 101, Title: "Shirt", Quantity: 0}},
	})
	if err != nil {
		t.Fatalf("ProcessOrderEvent: %v", err)
	}
	if !result.FabricUsage["cotton"].Equal(decimal.NewFromInt(2)) {
		t.Errorf("usage[cotton] = %s, want 2", result.FabricUsage["cotton"])
	}
}
