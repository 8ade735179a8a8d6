package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, j)
}

// Roles
const (
	RoleCustomer = "cliente"
	RoleMerchant = "comerciante"
	RoleAdmin    = "administrador"
)

// Order states
const (
	OrderPending   = "pendiente"
	OrderPreparing = "preparando"
	OrderShipped   = "enviado"
	OrderDelivered = "entregado"
	OrderCancelled = "cancelado"
)

// Delivery types
const (
	DeliveryPickup = "recoger"
	DeliveryHome   = "domicilio"
)

// Payment methods and states
const (
	PaymentCard     = "tarjeta"
	PaymentCash     = "efectivo"
	PaymentTransfer = "transferencia"
	PaymentWallet   = "billetera_digital"

	PaymentPending   = "pendiente"
	PaymentCompleted = "completado"
	PaymentFailed    = "fallido"
	PaymentRefunded  = "reembolsado"
)

// Profile model - PostgreSQL. One row per authenticated user; ID is the
// identity carried in the session token.
type Profile struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Name         string    `gorm:"not null" json:"name"`
	Age          *int      `json:"age"`
	Location     string    `json:"location"`
	BankAccount  string    `json:"bank_account,omitempty"`
	ImageURL     string    `json:"image_url"`
	Role         string    `gorm:"default:cliente" json:"role"`   // cliente, comerciante, administrador
	Status       string    `gorm:"default:active" json:"status"` // active, suspended
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DaySchedule is the opening window of a store for one weekday, HH:MM.
type DaySchedule struct {
	Open  bool   `json:"abierto"`
	Start string `json:"inicio"`
	End   string `json:"fin"`
}

// WeeklySchedule maps lunes..domingo to the opening window of that day.
type WeeklySchedule map[string]DaySchedule

func (w WeeklySchedule) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	return json.Marshal(w)
}

func (w *WeeklySchedule) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, w)
}

// Store model - PostgreSQL (comercio)
type Store struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	RFC         string          `json:"rfc"`
	ImageURL    string          `json:"image_url"`
	Schedule    WeeklySchedule  `gorm:"type:jsonb" json:"horario"`
	Categories  []StoreCategory `gorm:"many2many:store_category_links" json:"categories,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StoreCategory model - PostgreSQL
type StoreCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `json:"description"`
}

// Order model - PostgreSQL (pedido). A checkout produces one order per store;
// orders of the same checkout share CheckoutID.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CheckoutID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"checkout_id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	StoreID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"store_id"`
	StoreName       string          `json:"store_name"`
	Status          string          `gorm:"default:pendiente" json:"status"`
	DeliveryType    string          `gorm:"not null" json:"delivery_type"`
	DeliveryAddress string          `json:"delivery_address"`
	SecurityCode    string          `json:"security_code"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DeliveryFee     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"delivery_fee"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Details         []OrderDetail   `gorm:"foreignKey:OrderID" json:"details,omitempty"`
	Payment         *Payment        `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderDetail model - PostgreSQL (detalle_pedido)
type OrderDetail struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	OfferID   string          `gorm:"not null" json:"offer_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
}

// Payment model - PostgreSQL (pago). Recorded at checkout, never charged here.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	Method        string          `gorm:"not null" json:"method"`
	Status        string          `gorm:"default:pendiente" json:"status"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	TransactionID string          `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Address model - PostgreSQL
type Address struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Label        string    `gorm:"not null" json:"label"` // casa, oficina, otro
	AddressLine1 string    `gorm:"not null" json:"address_line1"`
	AddressLine2 string    `json:"address_line2"`
	City         string    `gorm:"not null" json:"city"`
	State        string    `gorm:"not null" json:"state"`
	Country      string    `gorm:"not null" json:"country"`
	PostalCode   string    `gorm:"not null" json:"postal_code"`
	IsDefault    bool      `gorm:"default:false" json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OneLine renders the address the way it is stored on an order.
func (a *Address) OneLine() string {
	line := a.AddressLine1
	if a.AddressLine2 != "" {
		line += ", " + a.AddressLine2
	}
	return line + ", " + a.City + ", " + a.State + " " + a.PostalCode + ", " + a.Country
}
