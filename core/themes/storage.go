package themes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/adalundhe/producticons/core/storage"
)

// StorageKey is the key the selected theme is persisted under.
const StorageKey = "productIconThemeData"

// StateStore persists string values. *storage.Store implements it.
type StateStore interface {
	Get(ctx context.Context, key string, scope storage.Scope) (string, bool, error)
	Store(ctx context.Context, key, value string, scope storage.Scope, target storage.Target) error
}

type storedTheme struct {
	ID                string         `json:"id"`
	Label             string         `json:"label"`
	Description       string         `json:"description,omitempty"`
	SettingsID        string         `json:"settingsId"`
	StyleSheetContent string         `json:"styleSheetContent,omitempty"`
	Watch             bool           `json:"watch,omitempty"`
	ExtensionData     *ExtensionData `json:"extensionData,omitempty"`
}

// ToStorage persists the theme so it can be shown before extensions are
// scanned on the next start. The location is not persisted.
func (t *ThemeData) ToStorage(ctx context.Context, store StateStore) error {
	data, err := json.Marshal(storedTheme{
		ID:                t.ID,
		Label:             t.Label,
		Description:       t.Description,
		SettingsID:        t.SettingsID,
		StyleSheetContent: t.StyleSheet(),
		Watch:             t.Watch,
		ExtensionData:     t.ExtensionData,
	})
	if err != nil {
		return fmt.Errorf("encode theme %q: %w", t.ID, err)
	}
	return store.Store(ctx, StorageKey, string(data), storage.ScopeGlobal, storage.TargetMachine)
}

// FromStorage restores the persisted theme. It returns nil without error
// when nothing is stored or the stored value is unreadable. The restored
// theme is not loaded and has no location.
func FromStorage(ctx context.Context, store StateStore) (*ThemeData, error) {
	raw, ok, err := store.Get(ctx, StorageKey, storage.ScopeGlobal)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" || !gjson.Valid(raw) {
		return nil, nil
	}

	data := gjson.Parse(raw)
	if !data.IsObject() {
		return nil, nil
	}

	t := newThemeData("", "", "")
	data.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "id":
			t.ID = value.String()
		case "label":
			t.Label = value.String()
		case "description":
			t.Description = value.String()
		case "settingsId":
			t.SettingsID = value.String()
		case "styleSheetContent":
			t.restore(value.String())
		case "watch":
			t.Watch = value.Bool()
		case "extensionData":
			t.ExtensionData = extensionDataFromJSON(value)
		}
		return true
	})
	return t, nil
}

// extensionDataFromJSON accepts only a complete, well-typed object.
func extensionDataFromJSON(v gjson.Result) *ExtensionData {
	if !v.IsObject() {
		return nil
	}
	id, publisher, name, builtin := v.Get("extensionId"), v.Get("extensionPublisher"), v.Get("extensionName"), v.Get("extensionIsBuiltin")
	if id.Type != gjson.String || publisher.Type != gjson.String || name.Type != gjson.String || !builtin.IsBool() {
		return nil
	}
	return &ExtensionData{
		ExtensionID:        id.String(),
		ExtensionPublisher: publisher.String(),
		ExtensionName:      name.String(),
		ExtensionIsBuiltin: builtin.Bool(),
	}
}
