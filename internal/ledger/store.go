package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/aura-analytics/backend/internal/models"
)

var (
	ErrNotBootstrapped = errors.New("ledger store is not bootstrapped")
	ErrNoActiveProfile = errors.New("no active profile")
	ErrNotFound        = errors.New("not found")
)

// Gateway описывает долговременное хранилище состояния: две записи,
// каждая перезаписывается целиком, частичных обновлений не бывает.
// LoadAll дополнительно возвращает идентификаторы профилей в порядке
// документа, чтобы выбор "первого" профиля был детерминированным.
type Gateway interface {
	LoadAll(ctx context.Context) (models.AllProfileData, []string, bool, error)
	SaveAll(ctx context.Context, data models.AllProfileData, order []string) error
	LoadActiveProfileID(ctx context.Context) (string, bool, error)
	SaveActiveProfileID(ctx context.Context, id string) error
}

// RegisterResult описывает сущности, созданные регистрацией действия.
type RegisterResult struct {
	Sales   []models.Sale
	Pending *models.PendingInvestment
}

// Store хранит леджеры всех профилей и является единственной точкой
// мутации состояния. Каждая мутация синхронно пересохраняет всю карту
// через Gateway до возврата управления.
type Store struct {
	mu       sync.Mutex
	gateway  Gateway
	now      func() time.Time
	data     models.AllProfileData
	order    []string
	activeID string
	filter   models.DateFilter
	ready    bool

	defaultProfileName string
}

// NewStore создает стор поверх шлюза хранения.
func NewStore(gateway Gateway, defaultProfileName string) *Store {
	if defaultProfileName == "" {
		defaultProfileName = "Principal"
	}
	return &Store{
		gateway:            gateway,
		now:                time.Now,
		filter:             models.FilterToday,
		defaultProfileName: defaultProfileName,
	}
}

// Bootstrap загружает состояние и готовит активный профиль. Вызывается
// ровно один раз до обслуживания запросов; до вызова любая операция
// возвращает ErrNotBootstrapped.
func (s *Store) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, order, ok, err := s.gateway.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load profile data: %w", err)
	}

	if !ok {
		id := uuid.NewString()
		data = models.AllProfileData{id: models.NewProfileData(id, s.defaultProfileName)}
		order = []string{id}
		if err := s.gateway.SaveAll(ctx, data, order); err != nil {
			return fmt.Errorf("persist default profile: %w", err)
		}
	}

	s.data = data
	s.order = normalizeOrder(data, order)

	savedID, okActive, err := s.gateway.LoadActiveProfileID(ctx)
	if err != nil {
		return fmt.Errorf("load active profile id: %w", err)
	}

	activeID := ""
	if okActive {
		if _, exists := data[savedID]; exists {
			activeID = savedID
		}
	}
	if activeID == "" && len(s.order) > 0 {
		activeID = s.order[0]
	}

	if activeID != "" && activeID != savedID {
		if err := s.gateway.SaveActiveProfileID(ctx, activeID); err != nil {
			return fmt.Errorf("persist active profile id: %w", err)
		}
	}

	s.activeID = activeID
	s.ready = true
	return nil
}

// Profiles возвращает все профили и идентификатор активного.
func (s *Store) Profiles() ([]models.Profile, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil, "", ErrNotBootstrapped
	}

	profiles := make([]models.Profile, 0, len(s.data))
	for _, pd := range s.data {
		profiles = append(profiles, pd.Profile)
	}
	return profiles, s.activeID, nil
}

// AddProfile создает профиль с пустыми коллекциями и делает его активным.
func (s *Store) AddProfile(ctx context.Context, name string) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return models.Profile{}, ErrNotBootstrapped
	}

	id := uuid.NewString()
	s.data[id] = models.NewProfileData(id, name)
	s.order = append(s.order, id)

	rollback := func() {
		delete(s.data, id)
		s.order = s.order[:len(s.order)-1]
	}

	if err := s.gateway.SaveAll(ctx, s.data, s.order); err != nil {
		rollback()
		return models.Profile{}, err
	}
	if err := s.gateway.SaveActiveProfileID(ctx, id); err != nil {
		rollback()
		// Карта уже пересохранена с новым профилем, возвращаем и ее.
		_ = s.gateway.SaveAll(ctx, s.data, s.order)
		return models.Profile{}, err
	}

	s.activeID = id
	return s.data[id].Profile, nil
}

// SetActiveProfile переключает активный профиль.
func (s *Store) SetActiveProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return ErrNotBootstrapped
	}
	if _, exists := s.data[id]; !exists {
		return ErrNotFound
	}

	if err := s.gateway.SaveActiveProfileID(ctx, id); err != nil {
		return err
	}

	s.activeID = id
	return nil
}

// ActiveProfileData возвращает копию леджера активного профиля.
func (s *Store) ActiveProfileData() (models.ProfileData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeData()
}

// ActiveProfileID возвращает идентификатор активного профиля.
// Пустая строка означает, что активный профиль не выбран.
func (s *Store) ActiveProfileID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// RegisterAction применяет правило распределения одной пачки рекламных
// расходов: n валидных возвратов создают n продаж с долей investedAmount/n,
// ноль возвратов при положительном расходе создает отложенную инвестицию,
// иначе ничего не создается.
func (s *Store) RegisterAction(ctx context.Context, investedAmount float64, returns []float64, applyFees bool) (RegisterResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd, err := s.activeData()
	if err != nil {
		return RegisterResult{}, err
	}

	valid := make([]float64, 0, len(returns))
	for _, value := range returns {
		if value > 0 {
			valid = append(valid, value)
		}
	}

	if len(valid) == 0 {
		if investedAmount <= 0 {
			return RegisterResult{}, nil
		}
		pending := models.PendingInvestment{
			ID:             uuid.NewString(),
			InvestedAmount: investedAmount,
			RegisteredDate: s.nowISO(),
			IsResolved:     false,
		}
		pd.PendingInvestments = append(clonePending(pd.PendingInvestments), pending)
		if err := s.replace(ctx, pd); err != nil {
			return RegisterResult{}, err
		}
		return RegisterResult{Pending: &pending}, nil
	}

	share := investedAmount / float64(len(valid))
	created := make([]models.Sale, 0, len(valid))
	for _, amount := range valid {
		created = append(created, models.Sale{
			ID:             uuid.NewString(),
			Amount:         amount,
			InvestedAmount: share,
			ApplyFees:      applyFees,
			SaleDate:       s.nowISO(),
		})
	}

	pd.Sales = append(cloneSales(pd.Sales), created...)
	if err := s.replace(ctx, pd); err != nil {
		return RegisterResult{}, err
	}
	return RegisterResult{Sales: created}, nil
}

// AddPendingInvestment регистрирует рекламный расход без возврата.
func (s *Store) AddPendingInvestment(ctx context.Context, investedAmount float64) (models.PendingInvestment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd, err := s.activeData()
	if err != nil {
		return models.PendingInvestment{}, err
	}

	pending := models.PendingInvestment{
		ID:             uuid.NewString(),
		InvestedAmount: investedAmount,
		RegisteredDate: s.nowISO(),
		IsResolved:     false,
	}
	pd.PendingInvestments = append(clonePending(pd.PendingInvestments), pending)
	if err := s.replace(ctx, pd); err != nil {
		return models.PendingInvestment{}, err
	}
	return pending, nil
}

// ResolvePendingInvestment закрывает отложенную инвестицию, создавая
// продажу с ее суммой расхода.
func (s *Store) ResolvePendingInvestment(ctx context.Context, id string, amount float64, applyFees bool) (models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd, err := s.activeData()
	if err != nil {
		return models.Sale{}, err
	}

	pending := clonePending(pd.PendingInvestments)
	index := -1
	for i, inv := range pending {
		if inv.ID == id && !inv.IsResolved {
			index = i
			break
		}
	}
	if index < 0 {
		return models.Sale{}, ErrNotFound
	}

	pending[index].IsResolved = true
	sale := models.Sale{
		ID:             uuid.NewString(),
		Amount:         amount,
		InvestedAmount: pending[index].InvestedAmount,
		ApplyFees:      applyFees,
		SaleDate:       s.nowISO(),
	}

	pd.PendingInvestments = pending
	pd.Sales = append(cloneSales(pd.Sales), sale)
	if err := s.replace(ctx, pd); err != nil {
		return models.Sale{}, err
	}
	return sale, nil
}

// RegisterDaily записывает дневную регистрацию "<дата> - <имя>",
// перезаписывая прежнее значение профиля.
func (s *Store) RegisterDaily(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd, err := s.activeData()
	if err != nil {
		return "", err
	}

	registration := s.todayISO() + " - " + name
	pd.DailyRegistration = registration
	if err := s.replace(ctx, pd); err != nil {
		return "", err
	}
	return registration, nil
}

// DailyRegistration возвращает, открыт ли дашборд сегодня, и имя смены.
// Проверка выводится заново при каждом вызове, поэтому в полночь
// состояние само становится "закрыто".
func (s *Store) DailyRegistration() (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd, err := s.activeData()
	if err != nil {
		return false, "", err
	}

	registered, name := parseDailyRegistration(pd.DailyRegistration, s.todayISO())
	return registered, name, nil
}

// FilteredSales возвращает продажи активного профиля в текущем окне фильтра.
func (s *Store) FilteredSales() ([]models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd, err := s.activeData()
	if err != nil {
		return nil, err
	}
	return SelectSales(pd.Sales, s.filter, s.now()), nil
}

// SetDateFilter выбирает окно фильтра на время жизни процесса.
func (s *Store) SetDateFilter(filter models.DateFilter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return ErrNotBootstrapped
	}
	s.filter = filter
	return nil
}

// DateFilter возвращает текущее окно фильтра.
func (s *Store) DateFilter() models.DateFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// AddFee добавляет таксу в леджер активного профиля.
func (s *Store) AddFee(ctx context.Context, name string, amount float64, feeType models.FeeType, isActive bool) (models.Fee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd, err := s.activeData()
	if err != nil {
		return models.Fee{}, err
	}

	fee := models.Fee{
		ID:       uuid.NewString(),
		Name:     name,
		Amount:   amount,
		Type:     feeType,
		IsActive: isActive,
	}
	pd.Fees = append(cloneFees(pd.Fees), fee)
	if err := s.replace(ctx, pd); err != nil {
		return models.Fee{}, err
	}
	return fee, nil
}

// UpdateFee изменяет имя, сумму и тип таксы.
func (s *Store) UpdateFee(ctx context.Context, id, name string, amount float64, feeType models.FeeType) (models.Fee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd, err := s.activeData()
	if err != nil {
		return models.Fee{}, err
	}

	fees := cloneFees(pd.Fees)
	index := indexOfFee(fees, id)
	if index < 0 {
		return models.Fee{}, ErrNotFound
	}

	fees[index].Name = name
	fees[index].Amount = amount
	fees[index].Type = feeType

	pd.Fees = fees
	if err := s.replace(ctx, pd); err != nil {
		return models.Fee{}, err
	}
	return fees[index], nil
}

// ToggleFee переключает участие таксы в расчетах. nil инвертирует флаг.
func (s *Store) ToggleFee(ctx context.Context, id string, isActive *bool) (models.Fee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd, err := s.activeData()
	if err != nil {
		return models.Fee{}, err
	}

	fees := cloneFees(pd.Fees)
	index := indexOfFee(fees, id)
	if index < 0 {
		return models.Fee{}, ErrNotFound
	}

	if isActive == nil {
		fees[index].IsActive = !fees[index].IsActive
	} else {
		fees[index].IsActive = *isActive
	}

	pd.Fees = fees
	if err := s.replace(ctx, pd); err != nil {
		return models.Fee{}, err
	}
	return fees[index], nil
}

// DeleteFee удаляет таксу из леджера.
func (s *Store) DeleteFee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd, err := s.activeData()
	if err != nil {
		return err
	}

	fees := cloneFees(pd.Fees)
	index := indexOfFee(fees, id)
	if index < 0 {
		return ErrNotFound
	}

	pd.Fees = append(fees[:index], fees[index+1:]...)
	return s.replace(ctx, pd)
}

// AddGoal добавляет цель (миссию) активного профиля.
func (s *Store) AddGoal(ctx context.Context, title string, targetAmount float64, deadline *string) (models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd, err := s.activeData()
	if err != nil {
		return models.Goal{}, err
	}

	goal := models.Goal{
		ID:           uuid.NewString(),
		Title:        title,
		TargetAmount: targetAmount,
		Deadline:     deadline,
	}
	pd.Goals = append(cloneGoals(pd.Goals), goal)
	if err := s.replace(ctx, pd); err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

// UpdateGoalProgress обновляет прогресс цели; достижение планки
// автоматически помечает цель выполненной.
func (s *Store) UpdateGoalProgress(ctx context.Context, id string, currentAmount float64) (models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd, err := s.activeData()
	if err != nil {
		return models.Goal{}, err
	}

	goals := cloneGoals(pd.Goals)
	index := -1
	for i, goal := range goals {
		if goal.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return models.Goal{}, ErrNotFound
	}

	goals[index].CurrentAmount = currentAmount
	goals[index].IsCompleted = currentAmount >= goals[index].TargetAmount

	pd.Goals = goals
	if err := s.replace(ctx, pd); err != nil {
		return models.Goal{}, err
	}
	return goals[index], nil
}

func (s *Store) activeData() (models.ProfileData, error) {
	if !s.ready {
		return models.ProfileData{}, ErrNotBootstrapped
	}
	if s.activeID == "" {
		return models.ProfileData{}, ErrNoActiveProfile
	}

	pd, exists := s.data[s.activeID]
	if !exists {
		return models.ProfileData{}, ErrNoActiveProfile
	}
	return pd, nil
}

// replace заменяет леджер активного профиля и пересохраняет всю карту.
// При ошибке сохранения память откатывается к прежнему значению.
func (s *Store) replace(ctx context.Context, pd models.ProfileData) error {
	previous := s.data[s.activeID]
	s.data[s.activeID] = pd

	if err := s.gateway.SaveAll(ctx, s.data, s.order); err != nil {
		s.data[s.activeID] = previous
		return err
	}
	return nil
}

func (s *Store) nowISO() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Store) todayISO() string {
	return s.now().UTC().Format(dateLayout)
}

// normalizeOrder оставляет только существующие профили без дубликатов;
// профили, которых в порядке нет, дописываются в конец отсортированными.
func normalizeOrder(data models.AllProfileData, order []string) []string {
	normalized := make([]string, 0, len(data))
	seen := make(map[string]bool, len(data))

	for _, id := range order {
		if _, ok := data[id]; ok && !seen[id] {
			normalized = append(normalized, id)
			seen[id] = true
		}
	}

	rest := make([]string, 0, len(data))
	for id := range data {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)

	return append(normalized, rest...)
}

func parseDailyRegistration(registration, today string) (bool, string) {
	if registration == "" || !strings.HasPrefix(registration, today) {
		return false, ""
	}

	_, name, found := strings.Cut(registration, " - ")
	if !found {
		return true, ""
	}
	return true, name
}

func indexOfFee(fees []models.Fee, id string) int {
	for i, fee := range fees {
		if fee.ID == id {
			return i
		}
	}
	return -1
}

func cloneSales(sales []models.Sale) []models.Sale {
	return append([]models.Sale{}, sales...)
}

func clonePending(pending []models.PendingInvestment) []models.PendingInvestment {
	return append([]models.PendingInvestment{}, pending...)
}

func cloneFees(fees []models.Fee) []models.Fee {
	return append([]models.Fee{}, fees...)
}

func cloneGoals(goals []models.Goal) []models.Goal {
	return append([]models.Goal{}, goals...)
}
