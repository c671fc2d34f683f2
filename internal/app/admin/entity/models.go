package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products in the storefront catalog.
// The name is unique at the database level so concurrent creates
// cannot slip in two categories with the same name.
type Category struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Category) TableName() string {
	return "categories"
}

// Product is a catalog item. ImagePath holds the opaque reference
// returned by the image store; nil when no image was uploaded.
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	CategoryID  uuid.UUID `json:"category_id" gorm:"type:uuid;not null"`
	ImagePath   *string   `json:"image_path,omitempty" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Product) TableName() string {
	return "products"
}

// ProductWithCategory is the list-view shape: a product joined with
// its category.
type ProductWithCategory struct {
	Product
	Category Category `json:"category"`
}

// Order is a customer order. Its product set lives in the
// order_products join table and is always replaced wholesale on edit,
// never patched.
type Order struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CustomerName string    `json:"customer_name" gorm:"type:varchar(200);not null"`
	Address      string    `json:"address" gorm:"type:varchar(500);not null"`
	Phone        string    `json:"phone" gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	Products     []Product `json:"products,omitempty" gorm:"many2many:order_products;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderProduct is one association row linking an order to a product.
// The composite primary key makes duplicate pairs impossible.
type OrderProduct struct {
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;primaryKey"`
}

func (OrderProduct) TableName() string {
	return "order_products"
}

// OrderWithProducts contains an order with its resolved product set.
type OrderWithProducts struct {
	Order
	Products []Product `json:"products"`
}

// ChangeEvent is published to Kafka after every successful mutation.
// EventType is <ENTITY>_<ACTION>, e.g. PRODUCT_UPDATED.
type ChangeEvent struct {
	EventType  string    `json:"event_type"`
	EntityType string    `json:"entity_type"` // category, product, order
	EntityID   uuid.UUID `json:"entity_id"`
	Name       string    `json:"name,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
