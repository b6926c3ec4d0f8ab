package models

type FeeType string

type DateFilter string

const (
	FeeTypeFixed      FeeType = "fixed"
	FeeTypePercentage FeeType = "percentage"
	FeeTypePerSale    FeeType = "per-sale"
	FeeTypeUnique     FeeType = "unique"

	FilterToday     DateFilter = "Today"
	FilterYesterday DateFilter = "Yesterday"
	FilterThisWeek  DateFilter = "This Week"
	FilterThisMonth DateFilter = "This Month"
	FilterCustom    DateFilter = "Custom"
)

// JSON-теги повторяют camelCase сохраненного состояния,
// чтобы уже накопленные данные читались без миграции.

type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Fee struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Type     FeeType `json:"type"`
	IsActive bool    `json:"isActive"`
}

type Goal struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	Deadline      *string `json:"deadline,omitempty"`
	IsCompleted   bool    `json:"isCompleted"`
}

type Sale struct {
	ID             string  `json:"id"`
	Amount         float64 `json:"amount"`
	InvestedAmount float64 `json:"investedAmount"`
	ApplyFees      bool    `json:"applyFees"`
	SaleDate       string  `json:"saleDate"`
}

type PendingInvestment struct {
	ID             string  `json:"id"`
	InvestedAmount float64 `json:"investedAmount"`
	RegisteredDate string  `json:"registeredDate"`
	IsResolved     bool    `json:"isResolved"`
}

type ProfileData struct {
	Profile            Profile             `json:"profile"`
	Fees               []Fee               `json:"fees"`
	Goals              []Goal              `json:"goals"`
	Sales              []Sale              `json:"sales"`
	PendingInvestments []PendingInvestment `json:"pendingInvestments"`
	DailyRegistration  string              `json:"dailyRegistration,omitempty"`
}

type AllProfileData map[string]ProfileData

// NewProfileData создает пустой леджер для профиля.
func NewProfileData(id, name string) ProfileData {
	return ProfileData{
		Profile:            Profile{ID: id, Name: name},
		Fees:               []Fee{},
		Goals:              []Goal{},
		Sales:              []Sale{},
		PendingInvestments: []PendingInvestment{},
	}
}

// ValidFeeType проверяет, что тип таксы известен.
func ValidFeeType(value string) (FeeType, bool) {
	switch FeeType(value) {
	case FeeTypeFixed, FeeTypePercentage, FeeTypePerSale, FeeTypeUnique:
		return FeeType(value), true
	}
	return "", false
}

// ValidDateFilter проверяет значение фильтра периода.
func ValidDateFilter(value string) (DateFilter, bool) {
	switch DateFilter(value) {
	case FilterToday, FilterYesterday, FilterThisWeek, FilterThisMonth, FilterCustom:
		return DateFilter(value), true
	}
	return "", false
}
