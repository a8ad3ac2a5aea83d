package model

import "time"

// Item is an inventory item type tracked by quantity.
type Item struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Description       *string    `json:"description"`
	ItemType          string     `json:"item_type"`
	LabelCode         string     `json:"label_code"`
	QuantityTotal     int        `json:"quantity_total"`
	QuantityAvailable int        `json:"quantity_available"`
	Location          *string    `json:"location"`
	PurchaseDate      *time.Time `json:"purchase_date"`
	PurchasePrice     *Money     `json:"purchase_price"`
	ConditionNotes    *string    `json:"condition_notes"`
	HasImage          bool       `json:"has_image"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Item types.
const (
	ItemTypeDigitalBook         = "digital_book"
	ItemTypeLaboratoryEquipment = "laboratory_equipment"
	ItemTypeFurniture           = "furniture"
	ItemTypeITAsset             = "it_asset"
)

// ValidItemType reports whether t is a known item type.
func ValidItemType(t string) bool {
	switch t {
	case ItemTypeDigitalBook, ItemTypeLaboratoryEquipment, ItemTypeFurniture, ItemTypeITAsset:
		return true
	}
	return false
}

// CreateItemInput holds the fields of a new item.
type CreateItemInput struct {
	Name           string     `json:"name" validate:"required"`
	Description    *string    `json:"description"`
	ItemType       string     `json:"item_type" validate:"required,oneof=digital_book laboratory_equipment furniture it_asset"`
	LabelCode      string     `json:"label_code" validate:"required"`
	QuantityTotal  int        `json:"quantity_total" validate:"gte=1"`
	Location       *string    `json:"location"`
	PurchaseDate   *time.Time `json:"purchase_date"`
	PurchasePrice  *Money     `json:"purchase_price"`
	ConditionNotes *string    `json:"condition_notes"`
}

// UpdateItemInput is a partial update. Unset fields are left untouched,
// fields set to null are cleared.
type UpdateItemInput struct {
	Name           Optional[string]    `json:"name"`
	Description    Optional[string]    `json:"description"`
	ItemType       Optional[string]    `json:"item_type"`
	LabelCode      Optional[string]    `json:"label_code"`
	QuantityTotal  Optional[int]       `json:"quantity_total"`
	Location       Optional[string]    `json:"location"`
	PurchaseDate   Optional[time.Time] `json:"purchase_date"`
	PurchasePrice  Optional[Money]     `json:"purchase_price"`
	ConditionNotes Optional[string]    `json:"condition_notes"`
}
