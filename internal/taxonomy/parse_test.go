package taxonomy

import (
	"errors"
	"testing"
)

func TestParseRarity(t *testing.T) {
	cases := []struct {
		in   string
		want Rarity
	}{
		{"Junk", RarityJunk},
		{"Basic", RarityBasic},
		{"Fine", RarityFine},
		{"Masterwork", RarityMasterwork},
		{"Rare", RarityRare},
		{"Exotic", RarityExotic},
		{"Ascended", RarityAscended},
		{"Legendary", RarityLegendary},
		{"", RarityUnknown},
		{"Mythic", RarityUnknown},
		{"junk", RarityUnknown}, // rarity strings are case-sensitive upstream
	}
	for _, c := range cases {
		if got := ParseRarity(c.in); got != c.want {
			t.Errorf("ParseRarity(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseItemType(t *testing.T) {
	got, err := ParseItemType("Weapon")
	if err != nil {
		t.Fatalf("ParseItemType(Weapon): %v", err)
	}
	if got != TypeWeapon {
		t.Errorf("ParseItemType(Weapon) = %v, want TypeWeapon", got)
	}
}

func TestParseItemType_Exceptions(t *testing.T) {
	cases := []struct {
		in   string
		want ItemType
	}{
		{"PowerCore", TypeJadeBotCore},
		{"JadeTechModule", TypeJadeBotChip},
	}
	for _, c := range cases {
		got, err := ParseItemType(c.in)
		if err != nil {
			t.Fatalf("ParseItemType(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseItemType(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseItemType_Unknown(t *testing.T) {
	_, err := ParseItemType("Glider")
	if err == nil {
		t.Fatal("ParseItemType(Glider): expected error")
	}
	var ce *ClassificationError
	if !errors.As(err, &ce) {
		t.Fatalf("error is %T, want *ClassificationError", err)
	}
	if ce.Raw != "Glider" || ce.Field != "type" {
		t.Errorf("ClassificationError = %+v, want {type Glider}", ce)
	}
}

func TestParseSubType(t *testing.T) {
	got, err := ParseSubType(TypeWeapon, "Sword")
	if err != nil {
		t.Fatalf("ParseSubType(Weapon, Sword): %v", err)
	}
	if got != WeaponSword {
		t.Errorf("ParseSubType(Weapon, Sword) = %v, want WeaponSword", got)
	}
}

func TestParseSubType_GatheringExceptions(t *testing.T) {
	for _, raw := range []string{"Bait", "Lure"} {
		got, err := ParseSubType(TypeGathering, raw)
		if err != nil {
			t.Fatalf("ParseSubType(Gathering, %s): %v", raw, err)
		}
		if got != GatheringFishing {
			t.Errorf("ParseSubType(Gathering, %s) = %v, want GatheringFishing", raw, got)
		}
	}
}

func TestParseSubType_Unknown(t *testing.T) {
	_, err := ParseSubType(TypeWeapon, "Chainsaw")
	var ce *ClassificationError
	if !errors.As(err, &ce) {
		t.Fatalf("error is %T, want *ClassificationError", err)
	}
	if ce.Raw != "Chainsaw" {
		t.Errorf("ClassificationError.Raw = %q, want Chainsaw", ce.Raw)
	}
}

// TestParseSubType_ExceptionScopedToOwner verifies an exception registered
// under one type does not leak into another.
func TestParseSubType_ExceptionScopedToOwner(t *testing.T) {
	if _, err := ParseSubType(TypeWeapon, "Bait"); err == nil {
		t.Error("ParseSubType(Weapon, Bait): expected error")
	}
}

// TestSubTypeBanding checks that every registered subtype value, including
// every exception target, sits inside the band of its owning type.
func TestSubTypeBanding(t *testing.T) {
	for name, st := range subTypeNames {
		owner := st.Owner()
		if owner == TypeUnknown {
			t.Errorf("%s (%d) is outside every band", name, int(st))
			continue
		}
		lo, hi, ok := Band(owner)
		if !ok || st < lo || st > hi {
			t.Errorf("%s (%d) outside band [%d, %d] of %v", name, int(st), int(lo), int(hi), owner)
		}
	}
	for key, st := range subTypeExceptions {
		if st.Owner() != key.owner {
			t.Errorf("exception (%v, %q) maps to %d, owned by %v", key.owner, key.raw, int(st), st.Owner())
		}
	}
}

func TestHasDetails(t *testing.T) {
	withDetails := []ItemType{
		TypeArmor, TypeConsumable, TypeContainer, TypeGathering,
		TypeGizmo, TypeTrinket, TypeUpgradeComponent, TypeWeapon,
	}
	for _, it := range withDetails {
		if !HasDetails(it) {
			t.Errorf("HasDetails(%v) = false, want true", it)
		}
	}
	without := []ItemType{
		TypeBack, TypeBag, TypeCraftingMaterial, TypeJadeBotChip,
		TypeJadeBotCore, TypeKey, TypeMiniPet, TypeTool, TypeTrait,
		TypeTrophy, TypeUnknown,
	}
	for _, it := range without {
		if HasDetails(it) {
			t.Errorf("HasDetails(%v) = true, want false", it)
		}
	}
}
