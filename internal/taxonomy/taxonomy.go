// Package taxonomy defines the closed classification schema for catalog
// items: rarities, top-level item types, and subtypes, plus parsers that map
// the free-form strings used by the Guild Wars 2 API onto that schema.
//
// Subtype values are partitioned into per-type bands of one hundred so a
// subtype value alone identifies its owning item type. Unknown is 0 and
// shared across all bands.
package taxonomy

import "fmt"

// Rarity is the closed rarity scale. RarityUnknown is the default for any
// upstream string the scale does not cover.
type Rarity int

const (
	RarityUnknown Rarity = iota
	RarityJunk
	RarityBasic
	RarityFine
	RarityMasterwork
	RarityRare
	RarityExotic
	RarityAscended
	RarityLegendary
)

// ItemType is the closed set of top-level item kinds.
type ItemType int

const (
	TypeUnknown ItemType = iota
	TypeArmor
	TypeBack
	TypeBag
	TypeConsumable
	TypeContainer
	TypeCraftingMaterial
	TypeGathering
	TypeGizmo
	TypeJadeBotChip
	TypeJadeBotCore
	TypeKey
	TypeMiniPet
	TypeTool
	TypeTrait
	TypeTrinket
	TypeTrophy
	TypeUpgradeComponent
	TypeWeapon
)

// SubType refines a detail-bearing ItemType. Values live in the band
// reserved for their owner: Armor 100s, Consumable 200s, Container 300s,
// Gathering 400s, Gizmo 500s, Trinket 600s, UpgradeComponent 700s,
// Weapon 800s.
type SubType int

// SubTypeUnknown is the shared zero value across all bands.
const SubTypeUnknown SubType = 0

// Armor band.
const (
	ArmorBoots SubType = iota + 101
	ArmorCoat
	ArmorGloves
	ArmorHelm
	ArmorHelmAquatic
	ArmorLeggings
	ArmorShoulders
)

// Consumable band.
const (
	ConsumableAppearanceChange SubType = iota + 201
	ConsumableBooze
	ConsumableContractNpc
	ConsumableCurrency
	ConsumableFood
	ConsumableGeneric
	ConsumableHalloween
	ConsumableImmediate
	ConsumableMountRandomUnlock
	ConsumableRandomUnlock
	ConsumableTeleportToFriend
	ConsumableTransmutation
	ConsumableUnlock
	ConsumableUpgradeRemoval
	ConsumableUtility
)

// Container band.
const (
	ContainerDefault SubType = iota + 301
	ContainerGiftBox
	ContainerImmediate
	ContainerOpenUI
)

// Gathering band. GatheringFishing has no conventionally named upstream
// string; it is reached only through the exception table.
const (
	GatheringForaging SubType = iota + 401
	GatheringLogging
	GatheringMining
	GatheringFishing
)

// Gizmo band.
const (
	GizmoDefault SubType = iota + 501
	GizmoContainerKey
	GizmoRentableContractNpc
	GizmoUnlimitedConsumable
)

// Trinket band.
const (
	TrinketAccessory SubType = iota + 601
	TrinketAmulet
	TrinketRing
)

// UpgradeComponent band.
const (
	UpgradeComponentDefault SubType = iota + 701
	UpgradeComponentGem
	UpgradeComponentRune
	UpgradeComponentSigil
)

// Weapon band.
const (
	WeaponAxe SubType = iota + 801
	WeaponDagger
	WeaponFocus
	WeaponGreatsword
	WeaponHammer
	WeaponHarpoon
	WeaponLargeBundle
	WeaponLongBow
	WeaponMace
	WeaponPistol
	WeaponRifle
	WeaponScepter
	WeaponShield
	WeaponShortBow
	WeaponSmallBundle
	WeaponSpeargun
	WeaponStaff
	WeaponSword
	WeaponTorch
	WeaponToy
	WeaponToyTwoHanded
	WeaponTrident
	WeaponWarhorn
)

// bands reserves a [lo, hi] subtype range per detail-bearing type.
var bands = map[ItemType][2]SubType{
	TypeArmor:            {100, 199},
	TypeConsumable:       {200, 299},
	TypeContainer:        {300, 399},
	TypeGathering:        {400, 499},
	TypeGizmo:            {500, 599},
	TypeTrinket:          {600, 699},
	TypeUpgradeComponent: {700, 799},
	TypeWeapon:           {800, 899},
}

// HasDetails reports whether t carries a structured detail blob with its own
// subtype, i.e. whether t owns a subtype band.
func HasDetails(t ItemType) bool {
	_, ok := bands[t]
	return ok
}

// Band returns the subtype value range reserved for t. ok is false for
// types without structured detail.
func Band(t ItemType) (lo, hi SubType, ok bool) {
	b, ok := bands[t]
	return b[0], b[1], ok
}

// Owner returns the ItemType whose band contains s, or TypeUnknown for
// SubTypeUnknown and out-of-band values.
func (s SubType) Owner() ItemType {
	for t, b := range bands {
		if s >= b[0] && s <= b[1] {
			return t
		}
	}
	return TypeUnknown
}

var itemTypeStrings = map[ItemType]string{
	TypeUnknown:          "Unknown",
	TypeArmor:            "Armor",
	TypeBack:             "Back",
	TypeBag:              "Bag",
	TypeConsumable:       "Consumable",
	TypeContainer:        "Container",
	TypeCraftingMaterial: "CraftingMaterial",
	TypeGathering:        "Gathering",
	TypeGizmo:            "Gizmo",
	TypeJadeBotChip:      "JadeBotChip",
	TypeJadeBotCore:      "JadeBotCore",
	TypeKey:              "Key",
	TypeMiniPet:          "MiniPet",
	TypeTool:             "Tool",
	TypeTrait:            "Trait",
	TypeTrinket:          "Trinket",
	TypeTrophy:           "Trophy",
	TypeUpgradeComponent: "UpgradeComponent",
	TypeWeapon:           "Weapon",
}

func (t ItemType) String() string {
	if s, ok := itemTypeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("ItemType(%d)", int(t))
}

var rarityStrings = map[Rarity]string{
	RarityUnknown:    "Unknown",
	RarityJunk:       "Junk",
	RarityBasic:      "Basic",
	RarityFine:       "Fine",
	RarityMasterwork: "Masterwork",
	RarityRare:       "Rare",
	RarityExotic:     "Exotic",
	RarityAscended:   "Ascended",
	RarityLegendary:  "Legendary",
}

func (r Rarity) String() string {
	if s, ok := rarityStrings[r]; ok {
		return s
	}
	return fmt.Sprintf("Rarity(%d)", int(r))
}
