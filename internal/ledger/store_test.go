package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"example.com/aura-analytics/backend/internal/models"
)

// memoryGateway хранит сериализованное состояние в памяти и повторяет
// контракт долговременного хранилища: перезапись значения целиком.
type memoryGateway struct {
	raw            []byte
	order          []string
	active         string
	hasActive      bool
	failSave       error
	failActiveSave error
	saveCount      int
}

func (g *memoryGateway) LoadAll(_ context.Context) (models.AllProfileData, []string, bool, error) {
	if g.raw == nil {
		return nil, nil, false, nil
	}

	var data models.AllProfileData
	if err := json.Unmarshal(g.raw, &data); err != nil {
		return nil, nil, false, nil
	}
	return data, g.order, true, nil
}

func (g *memoryGateway) SaveAll(_ context.Context, data models.AllProfileData, order []string) error {
	if g.failSave != nil {
		return g.failSave
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	g.raw = raw
	g.order = append([]string(nil), order...)
	g.saveCount++
	return nil
}

func (g *memoryGateway) LoadActiveProfileID(_ context.Context) (string, bool, error) {
	return g.active, g.hasActive, nil
}

func (g *memoryGateway) SaveActiveProfileID(_ context.Context, id string) error {
	if g.failActiveSave != nil {
		return g.failActiveSave
	}

	g.active = id
	g.hasActive = true
	return nil
}

func seedGateway(t *testing.T, profiles map[string]models.ProfileData, order []string, activeID string) *memoryGateway {
	t.Helper()

	raw, err := json.Marshal(models.AllProfileData(profiles))
	if err != nil {
		t.Fatalf("seed marshal: %v", err)
	}

	return &memoryGateway{
		raw:       raw,
		order:     order,
		active:    activeID,
		hasActive: activeID != "",
	}
}

func bootstrappedStore(t *testing.T) (*Store, *memoryGateway) {
	t.Helper()

	gateway := &memoryGateway{}
	store := NewStore(gateway, "")
	if err := store.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return store, gateway
}

// TestBootstrapCreatesDefaultProfile проверяет первый запуск без состояния.
func TestBootstrapCreatesDefaultProfile(t *testing.T) {
	store, gateway := bootstrappedStore(t)

	profiles, activeID, err := store.Profiles()
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected one default profile, got %d", len(profiles))
	}
	if profiles[0].Name != "Principal" {
		t.Fatalf("expected default profile name Principal, got %s", profiles[0].Name)
	}
	if activeID != profiles[0].ID {
		t.Fatalf("expected default profile to be active")
	}
	if gateway.saveCount != 1 {
		t.Fatalf("expected immediate persist on bootstrap, got %d saves", gateway.saveCount)
	}
}

// TestBootstrapPrefersSavedActiveID проверяет восстановление активного профиля.
func TestBootstrapPrefersSavedActiveID(t *testing.T) {
	gateway := seedGateway(t, map[string]models.ProfileData{
		"a": models.NewProfileData("a", "First"),
		"b": models.NewProfileData("b", "Second"),
	}, []string{"a", "b"}, "b")

	store := NewStore(gateway, "")
	if err := store.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	_, activeID, err := store.Profiles()
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if activeID != "b" {
		t.Fatalf("expected saved active id b, got %s", activeID)
	}
}

// TestBootstrapFallsBackToFirstKey проверяет откат на первый профиль документа,
// когда сохраненный идентификатор больше не существует.
func TestBootstrapFallsBackToFirstKey(t *testing.T) {
	gateway := seedGateway(t, map[string]models.ProfileData{
		"zz": models.NewProfileData("zz", "First"),
		"aa": models.NewProfileData("aa", "Second"),
	}, []string{"zz", "aa"}, "gone")

	store := NewStore(gateway, "")
	if err := store.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	_, activeID, err := store.Profiles()
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if activeID != "zz" {
		t.Fatalf("expected fallback to first key in document order, got %s", activeID)
	}
	if gateway.active != "zz" {
		t.Fatalf("expected fallback id to be persisted, got %s", gateway.active)
	}
}

// TestOperationsBeforeBootstrap проверяет жесткий отказ до инициализации.
func TestOperationsBeforeBootstrap(t *testing.T) {
	store := NewStore(&memoryGateway{}, "")

	if _, err := store.RegisterAction(context.Background(), 100, []float64{50}, true); !errors.Is(err, ErrNotBootstrapped) {
		t.Fatalf("expected ErrNotBootstrapped, got %v", err)
	}
	if _, _, err := store.Profiles(); !errors.Is(err, ErrNotBootstrapped) {
		t.Fatalf("expected ErrNotBootstrapped, got %v", err)
	}
}

// TestNoActiveProfile проверяет безопасный отказ без активного профиля.
func TestNoActiveProfile(t *testing.T) {
	gateway := seedGateway(t, map[string]models.ProfileData{
		"a": models.NewProfileData("a", "First"),
	}, nil, "")

	store := NewStore(gateway, "")
	if err := store.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if _, err := store.RegisterAction(context.Background(), 50, []float64{25}, true); !errors.Is(err, ErrNoActiveProfile) {
		t.Fatalf("expected ErrNoActiveProfile, got %v", err)
	}
	if gateway.saveCount != 0 {
		t.Fatalf("expected no persist without active profile, got %d saves", gateway.saveCount)
	}
}

// TestRegisterActionSplit проверяет равное распределение расхода между возвратами.
func TestRegisterActionSplit(t *testing.T) {
	store, gateway := bootstrappedStore(t)
	savesBefore := gateway.saveCount

	result, err := store.RegisterAction(context.Background(), 300, []float64{100, 50, 25}, true)
	if err != nil {
		t.Fatalf("register action: %v", err)
	}

	if len(result.Sales) != 3 || result.Pending != nil {
		t.Fatalf("expected 3 sales and no pending, got %+v", result)
	}

	expectedAmounts := []float64{100, 50, 25}
	for i, sale := range result.Sales {
		if sale.InvestedAmount != 100 {
			t.Fatalf("expected even split of 100, got %f", sale.InvestedAmount)
		}
		if sale.Amount != expectedAmounts[i] {
			t.Fatalf("expected amount %f, got %f", expectedAmounts[i], sale.Amount)
		}
		if !sale.ApplyFees {
			t.Fatal("expected applyFees to propagate")
		}
	}

	if gateway.saveCount != savesBefore+1 {
		t.Fatalf("expected one persist per mutation, got %d", gateway.saveCount-savesBefore)
	}

	pd, err := store.ActiveProfileData()
	if err != nil {
		t.Fatalf("active profile data: %v", err)
	}
	if len(pd.Sales) != 3 {
		t.Fatalf("expected sales appended to ledger, got %d", len(pd.Sales))
	}
}

// TestRegisterActionPendingFallback проверяет создание отложенной инвестиции.
func TestRegisterActionPendingFallback(t *testing.T) {
	store, _ := bootstrappedStore(t)

	result, err := store.RegisterAction(context.Background(), 80, []float64{0, -5}, true)
	if err != nil {
		t.Fatalf("register action: %v", err)
	}

	if len(result.Sales) != 0 {
		t.Fatalf("expected no sales, got %d", len(result.Sales))
	}
	if result.Pending == nil || result.Pending.InvestedAmount != 80 {
		t.Fatalf("expected pending investment of 80, got %+v", result.Pending)
	}
	if result.Pending.IsResolved {
		t.Fatal("expected pending investment to start unresolved")
	}
}

// TestRegisterActionNoOp проверяет отсутствие сущностей при нулевом вводе.
func TestRegisterActionNoOp(t *testing.T) {
	store, gateway := bootstrappedStore(t)
	savesBefore := gateway.saveCount

	result, err := store.RegisterAction(context.Background(), 0, nil, true)
	if err != nil {
		t.Fatalf("register action: %v", err)
	}

	if len(result.Sales) != 0 || result.Pending != nil {
		t.Fatalf("expected no entities, got %+v", result)
	}
	if gateway.saveCount != savesBefore {
		t.Fatal("expected no persist for a no-op")
	}
}

// TestResolvePendingInvestment проверяет явное закрытие отложенной инвестиции.
func TestResolvePendingInvestment(t *testing.T) {
	store, _ := bootstrappedStore(t)

	pending, err := store.AddPendingInvestment(context.Background(), 120)
	if err != nil {
		t.Fatalf("add pending: %v", err)
	}

	sale, err := store.ResolvePendingInvestment(context.Background(), pending.ID, 200, true)
	if err != nil {
		t.Fatalf("resolve pending: %v", err)
	}
	if sale.InvestedAmount != 120 {
		t.Fatalf("expected resolved sale to carry invested amount 120, got %f", sale.InvestedAmount)
	}
	if sale.Amount != 200 {
		t.Fatalf("expected sale amount 200, got %f", sale.Amount)
	}

	pd, err := store.ActiveProfileData()
	if err != nil {
		t.Fatalf("active profile data: %v", err)
	}
	if !pd.PendingInvestments[0].IsResolved {
		t.Fatal("expected pending investment to be marked resolved")
	}

	if _, err := store.ResolvePendingInvestment(context.Background(), pending.ID, 10, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for already resolved investment, got %v", err)
	}
}

// TestRegisterDailyGate проверяет дневную регистрацию и сброс в полночь.
func TestRegisterDailyGate(t *testing.T) {
	store, _ := bootstrappedStore(t)

	day := time.Date(2026, 2, 27, 15, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return day }

	registration, err := store.RegisterDaily(context.Background(), "Morning Shift")
	if err != nil {
		t.Fatalf("register daily: %v", err)
	}
	if registration != "2026-02-27 - Morning Shift" {
		t.Fatalf("unexpected registration: %s", registration)
	}

	registered, name, err := store.DailyRegistration()
	if err != nil {
		t.Fatalf("daily registration: %v", err)
	}
	if !registered || name != "Morning Shift" {
		t.Fatalf("expected open gate with name, got %v %q", registered, name)
	}

	store.now = func() time.Time { return day.AddDate(0, 0, 1) }

	registered, _, err = store.DailyRegistration()
	if err != nil {
		t.Fatalf("daily registration: %v", err)
	}
	if registered {
		t.Fatal("expected gate to lock once the date advances")
	}
}

// TestRegisterDailyOverwrites проверяет перезапись имени в тот же день.
func TestRegisterDailyOverwrites(t *testing.T) {
	store, _ := bootstrappedStore(t)

	if _, err := store.RegisterDaily(context.Background(), "First"); err != nil {
		t.Fatalf("register daily: %v", err)
	}
	if _, err := store.RegisterDaily(context.Background(), "Second"); err != nil {
		t.Fatalf("register daily: %v", err)
	}

	_, name, err := store.DailyRegistration()
	if err != nil {
		t.Fatalf("daily registration: %v", err)
	}
	if name != "Second" {
		t.Fatalf("expected overwritten name Second, got %s", name)
	}
}

// TestFeeLifecycle проверяет CRUD такс через стор.
func TestFeeLifecycle(t *testing.T) {
	store, _ := bootstrappedStore(t)
	ctx := context.Background()

	fee, err := store.AddFee(ctx, "Gateway", 4.99, models.FeeTypePercentage, true)
	if err != nil {
		t.Fatalf("add fee: %v", err)
	}

	updated, err := store.UpdateFee(ctx, fee.ID, "Gateway Pro", 5.49, models.FeeTypePercentage)
	if err != nil {
		t.Fatalf("update fee: %v", err)
	}
	if updated.Name != "Gateway Pro" || updated.Amount != 5.49 {
		t.Fatalf("unexpected updated fee: %+v", updated)
	}

	toggled, err := store.ToggleFee(ctx, fee.ID, nil)
	if err != nil {
		t.Fatalf("toggle fee: %v", err)
	}
	if toggled.IsActive {
		t.Fatal("expected toggle to invert isActive")
	}

	if err := store.DeleteFee(ctx, fee.ID); err != nil {
		t.Fatalf("delete fee: %v", err)
	}
	if err := store.DeleteFee(ctx, fee.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestGoalProgress проверяет автозавершение цели при достижении планки.
func TestGoalProgress(t *testing.T) {
	store, _ := bootstrappedStore(t)
	ctx := context.Background()

	goal, err := store.AddGoal(ctx, "Primeiros 500 Pedidos", 500, nil)
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}
	if goal.IsCompleted {
		t.Fatal("expected new goal to start incomplete")
	}

	progressed, err := store.UpdateGoalProgress(ctx, goal.ID, 250)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if progressed.IsCompleted {
		t.Fatal("expected goal to stay incomplete at half target")
	}

	completed, err := store.UpdateGoalProgress(ctx, goal.ID, 500)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if !completed.IsCompleted {
		t.Fatal("expected goal to complete at target")
	}
}

// TestSaveFailureRollsBack проверяет откат памяти при ошибке сохранения.
func TestSaveFailureRollsBack(t *testing.T) {
	store, gateway := bootstrappedStore(t)

	gateway.failSave = errors.New("disk full")

	if _, err := store.RegisterAction(context.Background(), 100, []float64{60}, true); err == nil {
		t.Fatal("expected error when persistence fails")
	}

	gateway.failSave = nil

	pd, err := store.ActiveProfileData()
	if err != nil {
		t.Fatalf("active profile data: %v", err)
	}
	if len(pd.Sales) != 0 {
		t.Fatalf("expected in-memory state to roll back, got %d sales", len(pd.Sales))
	}
}

// TestAddProfileBecomesActive проверяет переключение на новый профиль.
func TestAddProfileBecomesActive(t *testing.T) {
	store, gateway := bootstrappedStore(t)

	profile, err := store.AddProfile(context.Background(), "Loja B")
	if err != nil {
		t.Fatalf("add profile: %v", err)
	}

	profiles, activeID, err := store.Profiles()
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected two profiles, got %d", len(profiles))
	}
	if activeID != profile.ID {
		t.Fatal("expected new profile to become active")
	}
	if gateway.active != profile.ID {
		t.Fatal("expected active id to be persisted")
	}
}

// TestAddProfileOrderSurvivesRestart проверяет, что порядок создания
// профилей переживает перезапуск и определяет откат активного профиля.
func TestAddProfileOrderSurvivesRestart(t *testing.T) {
	store, gateway := bootstrappedStore(t)

	first, _, err := store.Profiles()
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}

	second, err := store.AddProfile(context.Background(), "Loja B")
	if err != nil {
		t.Fatalf("add profile: %v", err)
	}

	expected := []string{first[0].ID, second.ID}
	if len(gateway.order) != 2 || gateway.order[0] != expected[0] || gateway.order[1] != expected[1] {
		t.Fatalf("expected persisted order %v, got %v", expected, gateway.order)
	}

	// Перезапуск с протухшим активным идентификатором.
	gateway.active = "gone"
	gateway.hasActive = true

	restarted := NewStore(gateway, "")
	if err := restarted.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap after restart: %v", err)
	}

	_, activeID, err := restarted.Profiles()
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if activeID != first[0].ID {
		t.Fatalf("expected first-created profile %s to become active, got %s", first[0].ID, activeID)
	}
}

// TestAddProfileActiveSaveFailureRollsBack проверяет, что ошибка записи
// активного идентификатора оставляет стор без нового профиля.
func TestAddProfileActiveSaveFailureRollsBack(t *testing.T) {
	store, gateway := bootstrappedStore(t)
	gateway.failActiveSave = errors.New("disk full")

	if _, err := store.AddProfile(context.Background(), "Loja B"); err == nil {
		t.Fatal("expected error when active id persistence fails")
	}

	gateway.failActiveSave = nil

	profiles, activeID, err := store.Profiles()
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected rollback to one profile, got %d", len(profiles))
	}
	if activeID != profiles[0].ID {
		t.Fatalf("expected active profile to stay %s, got %s", profiles[0].ID, activeID)
	}
	if len(gateway.order) != 1 {
		t.Fatalf("expected persisted order to be restored, got %v", gateway.order)
	}
}

// TestSetActiveProfileUnknown проверяет отказ при неизвестном профиле.
func TestSetActiveProfileUnknown(t *testing.T) {
	store, _ := bootstrappedStore(t)

	if err := store.SetActiveProfile(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
