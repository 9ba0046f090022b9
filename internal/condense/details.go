package condense

import (
	"encoding/json"
	"fmt"

	"github.com/gw2dex/gw2dex/internal/taxonomy"
)

// The shape of a record's details blob depends on its top-level type, so
// decoding dispatches through this table instead of reflection. Each decoder
// returns the detail type string for subtype classification.
var detailDecoders = map[taxonomy.ItemType]func(json.RawMessage) (string, error){
	taxonomy.TypeArmor:            decodeDetails[armorDetails],
	taxonomy.TypeConsumable:       decodeDetails[consumableDetails],
	taxonomy.TypeContainer:        decodeDetails[containerDetails],
	taxonomy.TypeGathering:        decodeDetails[gatheringDetails],
	taxonomy.TypeGizmo:            decodeDetails[gizmoDetails],
	taxonomy.TypeTrinket:          decodeDetails[trinketDetails],
	taxonomy.TypeUpgradeComponent: decodeDetails[upgradeDetails],
	taxonomy.TypeWeapon:           decodeDetails[weaponDetails],
}

// typed is satisfied by every per-type details struct.
type typed interface {
	detailType() string
}

func decodeDetails[T typed](raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("missing details blob")
	}
	var d T
	if err := json.Unmarshal(raw, &d); err != nil {
		return "", err
	}
	return d.detailType(), nil
}

type armorDetails struct {
	Type        string `json:"type"`
	WeightClass string `json:"weight_class"`
	Defense     int    `json:"defense"`
}

func (d armorDetails) detailType() string { return d.Type }

type consumableDetails struct {
	Type       string `json:"type"`
	UnlockType string `json:"unlock_type"`
	DurationMS int    `json:"duration_ms"`
}

func (d consumableDetails) detailType() string { return d.Type }

type containerDetails struct {
	Type string `json:"type"`
}

func (d containerDetails) detailType() string { return d.Type }

type gatheringDetails struct {
	Type string `json:"type"`
}

func (d gatheringDetails) detailType() string { return d.Type }

type gizmoDetails struct {
	Type string `json:"type"`
}

func (d gizmoDetails) detailType() string { return d.Type }

type trinketDetails struct {
	Type string `json:"type"`
}

func (d trinketDetails) detailType() string { return d.Type }

type upgradeDetails struct {
	Type   string `json:"type"`
	Suffix string `json:"suffix"`
}

func (d upgradeDetails) detailType() string { return d.Type }

type weaponDetails struct {
	Type       string `json:"type"`
	DamageType string `json:"damage_type"`
	MinPower   int    `json:"min_power"`
	MaxPower   int    `json:"max_power"`
}

func (d weaponDetails) detailType() string { return d.Type }
