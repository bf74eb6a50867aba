package models

import "time"

// MenuConfig is a named, independently persistable snapshot of a full
// catalog. The library may hold many; exactly one is live on the kiosk
// at a time.
type MenuConfig struct {
	ID             string     `gorm:"column:id;primaryKey" json:"id"`
	Name           string     `gorm:"column:name;not null" json:"name"`
	CurrencySymbol string     `gorm:"column:currency_symbol;not null;default:'$'" json:"currencySymbol"`
	Categories     []Category `gorm:"column:categories;serializer:json" json:"categories"`
	Products       []Product  `gorm:"column:products;serializer:json" json:"products"`
	LastUpdated    time.Time  `gorm:"column:last_updated;not null" json:"lastUpdated"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (MenuConfig) TableName() string {
	return "menu_configs"
}
