package repository

import (
	"reflect"
	"testing"

	"example.com/aura-analytics/backend/internal/models"
)

// TestProfileOrder проверяет извлечение ключей в порядке документа.
func TestProfileOrder(t *testing.T) {
	raw := []byte(`{"zz":{"profile":{"id":"zz","name":"B"}},"aa":{"profile":{"id":"aa","name":"A"}},"mm":{}}`)

	order, err := profileOrder(raw)
	if err != nil {
		t.Fatalf("profile order: %v", err)
	}

	want := []string{"zz", "aa", "mm"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

// TestMarshalOrderedKeepsInsertionOrder проверяет, что порядок создания
// профилей переживает цикл сохранения и чтения. json.Marshal сортирует
// ключи карты, поэтому профиль "aa", созданный вторым, вытеснял бы
// первый "zz" при восстановлении активного профиля.
func TestMarshalOrderedKeepsInsertionOrder(t *testing.T) {
	data := models.AllProfileData{
		"zz-first-created":  models.NewProfileData("zz-first-created", "First"),
		"aa-second-created": models.NewProfileData("aa-second-created", "Second"),
	}
	order := []string{"zz-first-created", "aa-second-created"}

	raw, err := marshalOrdered(data, order)
	if err != nil {
		t.Fatalf("marshal ordered: %v", err)
	}

	got, err := profileOrder(raw)
	if err != nil {
		t.Fatalf("profile order: %v", err)
	}
	if !reflect.DeepEqual(got, order) {
		t.Fatalf("expected insertion order %v after round trip, got %v", order, got)
	}
}

// TestMarshalOrderedAppendsUnlistedKeys проверяет дописывание профилей,
// которых нет в переданном порядке.
func TestMarshalOrderedAppendsUnlistedKeys(t *testing.T) {
	data := models.AllProfileData{
		"b": models.NewProfileData("b", "B"),
		"a": models.NewProfileData("a", "A"),
		"c": models.NewProfileData("c", "C"),
	}

	raw, err := marshalOrdered(data, []string{"c", "missing"})
	if err != nil {
		t.Fatalf("marshal ordered: %v", err)
	}

	got, err := profileOrder(raw)
	if err != nil {
		t.Fatalf("profile order: %v", err)
	}

	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestProfileOrderEmpty проверяет пустой объект.
func TestProfileOrderEmpty(t *testing.T) {
	order, err := profileOrder([]byte(`{}`))
	if err != nil {
		t.Fatalf("profile order: %v", err)
	}
	if len(order) != 0 {
		t.Fatalf("expected no keys, got %v", order)
	}
}

// TestProfileOrderNotObject проверяет отказ на не-объекте.
func TestProfileOrderNotObject(t *testing.T) {
	if _, err := profileOrder([]byte(`[1,2,3]`)); err == nil {
		t.Fatal("expected error for a non-object document")
	}
}
