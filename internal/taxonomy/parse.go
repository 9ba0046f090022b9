package taxonomy

import (
	"fmt"
	"strings"
)

// ClassificationError reports an upstream taxonomy string that neither the
// enum tables nor the exception table cover. It aborts projection rather
// than silently dropping data, so gaps in the schema get noticed.
type ClassificationError struct {
	Field string // "type" or "details.type"
	Raw   string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("unclassifiable %s string %q", e.Field, e.Raw)
}

var rarityNames = map[string]Rarity{
	"Junk":       RarityJunk,
	"Basic":      RarityBasic,
	"Fine":       RarityFine,
	"Masterwork": RarityMasterwork,
	"Rare":       RarityRare,
	"Exotic":     RarityExotic,
	"Ascended":   RarityAscended,
	"Legendary":  RarityLegendary,
}

var itemTypeNames = map[string]ItemType{
	"Armor":            TypeArmor,
	"Back":             TypeBack,
	"Bag":              TypeBag,
	"Consumable":       TypeConsumable,
	"Container":        TypeContainer,
	"CraftingMaterial": TypeCraftingMaterial,
	"Gathering":        TypeGathering,
	"Gizmo":            TypeGizmo,
	"JadeBotChip":      TypeJadeBotChip,
	"JadeBotCore":      TypeJadeBotCore,
	"Key":              TypeKey,
	"MiniPet":          TypeMiniPet,
	"Tool":             TypeTool,
	"Trait":            TypeTrait,
	"Trinket":          TypeTrinket,
	"Trophy":           TypeTrophy,
	"UpgradeComponent": TypeUpgradeComponent,
	"Weapon":           TypeWeapon,
}

// subTypeNames maps the conventional "<Type><Detail>" concatenation to its
// subtype value.
var subTypeNames = map[string]SubType{
	"ArmorBoots":       ArmorBoots,
	"ArmorCoat":        ArmorCoat,
	"ArmorGloves":      ArmorGloves,
	"ArmorHelm":        ArmorHelm,
	"ArmorHelmAquatic": ArmorHelmAquatic,
	"ArmorLeggings":    ArmorLeggings,
	"ArmorShoulders":   ArmorShoulders,

	"ConsumableAppearanceChange":  ConsumableAppearanceChange,
	"ConsumableBooze":             ConsumableBooze,
	"ConsumableContractNpc":       ConsumableContractNpc,
	"ConsumableCurrency":          ConsumableCurrency,
	"ConsumableFood":              ConsumableFood,
	"ConsumableGeneric":           ConsumableGeneric,
	"ConsumableHalloween":         ConsumableHalloween,
	"ConsumableImmediate":         ConsumableImmediate,
	"ConsumableMountRandomUnlock": ConsumableMountRandomUnlock,
	"ConsumableRandomUnlock":      ConsumableRandomUnlock,
	"ConsumableTeleportToFriend":  ConsumableTeleportToFriend,
	"ConsumableTransmutation":     ConsumableTransmutation,
	"ConsumableUnlock":            ConsumableUnlock,
	"ConsumableUpgradeRemoval":    ConsumableUpgradeRemoval,
	"ConsumableUtility":           ConsumableUtility,

	"ContainerDefault":   ContainerDefault,
	"ContainerGiftBox":   ContainerGiftBox,
	"ContainerImmediate": ContainerImmediate,
	"ContainerOpenUI":    ContainerOpenUI,

	"GatheringForaging": GatheringForaging,
	"GatheringLogging":  GatheringLogging,
	"GatheringMining":   GatheringMining,
	"GatheringFishing":  GatheringFishing,

	"GizmoDefault":             GizmoDefault,
	"GizmoContainerKey":        GizmoContainerKey,
	"GizmoRentableContractNpc": GizmoRentableContractNpc,
	"GizmoUnlimitedConsumable": GizmoUnlimitedConsumable,

	"TrinketAccessory": TrinketAccessory,
	"TrinketAmulet":    TrinketAmulet,
	"TrinketRing":      TrinketRing,

	"UpgradeComponentDefault": UpgradeComponentDefault,
	"UpgradeComponentGem":     UpgradeComponentGem,
	"UpgradeComponentRune":    UpgradeComponentRune,
	"UpgradeComponentSigil":   UpgradeComponentSigil,

	"WeaponAxe":          WeaponAxe,
	"WeaponDagger":       WeaponDagger,
	"WeaponFocus":        WeaponFocus,
	"WeaponGreatsword":   WeaponGreatsword,
	"WeaponHammer":       WeaponHammer,
	"WeaponHarpoon":      WeaponHarpoon,
	"WeaponLargeBundle":  WeaponLargeBundle,
	"WeaponLongBow":      WeaponLongBow,
	"WeaponMace":         WeaponMace,
	"WeaponPistol":       WeaponPistol,
	"WeaponRifle":        WeaponRifle,
	"WeaponScepter":      WeaponScepter,
	"WeaponShield":       WeaponShield,
	"WeaponShortBow":     WeaponShortBow,
	"WeaponSmallBundle":  WeaponSmallBundle,
	"WeaponSpeargun":     WeaponSpeargun,
	"WeaponStaff":        WeaponStaff,
	"WeaponSword":        WeaponSword,
	"WeaponTorch":        WeaponTorch,
	"WeaponToy":          WeaponToy,
	"WeaponToyTwoHanded": WeaponToyTwoHanded,
	"WeaponTrident":      WeaponTrident,
	"WeaponWarhorn":      WeaponWarhorn,
}

// subTypeDisplay inverts subTypeNames with the owner prefix stripped, for
// human-readable output.
var subTypeDisplay = func() map[SubType]string {
	m := make(map[SubType]string, len(subTypeNames))
	for name, st := range subTypeNames {
		m[st] = strings.TrimPrefix(name, st.Owner().String())
	}
	return m
}()

func (s SubType) String() string {
	if name, ok := subTypeDisplay[s]; ok {
		return name
	}
	return fmt.Sprintf("SubType(%d)", int(s))
}

// The API occasionally introduces strings that break the naming convention
// (usually late additions). Those are remapped here rather than in the
// parsers, so each quirk is a single auditable row. Keep the table additive;
// the entries below are individual known cases, not a pattern.

// typeExceptions remaps non-conforming top-level type strings.
var typeExceptions = map[string]ItemType{
	"PowerCore":      TypeJadeBotCore,
	"JadeTechModule": TypeJadeBotChip,
}

type subTypeExceptionKey struct {
	owner ItemType
	raw   string
}

// subTypeExceptions remaps non-conforming detail type strings, keyed by the
// owning top-level type.
var subTypeExceptions = map[subTypeExceptionKey]SubType{
	{TypeGathering, "Bait"}: GatheringFishing,
	{TypeGathering, "Lure"}: GatheringFishing,
}

// ParseRarity maps an upstream rarity string to its Rarity value.
// Unrecognized strings map to RarityUnknown; rarity parsing never fails.
func ParseRarity(s string) Rarity {
	return rarityNames[s]
}

// ParseItemType maps an upstream type string to its ItemType, consulting the
// exception table for known non-conforming strings. A string covered by
// neither is a *ClassificationError.
func ParseItemType(s string) (ItemType, error) {
	if t, ok := itemTypeNames[s]; ok {
		return t, nil
	}
	if t, ok := typeExceptions[s]; ok {
		return t, nil
	}
	return TypeUnknown, &ClassificationError{Field: "type", Raw: s}
}

// ParseSubType resolves the detail type string of an owner type to a SubType.
// The candidate name is the "<Type><Detail>" concatenation; on a miss the
// exception table is consulted. The resolved value is checked against the
// owner's band before it is returned.
func ParseSubType(owner ItemType, detail string) (SubType, error) {
	st, ok := subTypeNames[owner.String()+detail]
	if !ok {
		st, ok = subTypeExceptions[subTypeExceptionKey{owner, detail}]
	}
	if !ok {
		return SubTypeUnknown, &ClassificationError{Field: "details.type", Raw: detail}
	}

	lo, hi, ok := Band(owner)
	if !ok || st < lo || st > hi {
		return SubTypeUnknown, fmt.Errorf("subtype %d outside the %s band", int(st), owner)
	}
	return st, nil
}
