package models

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleWeakAdmin = "weak_admin"
)

type User struct {
	ID            uint     `gorm:"primaryKey;autoIncrement"                      json:"id"`
	Username      string   `gorm:"uniqueIndex:idx_users_username_email;not null" json:"username"`
	Email         string   `gorm:"uniqueIndex:idx_users_username_email;not null" json:"email"`
	PasswordHash  string   `gorm:"not null"                                      json:"-"`
	Salt          string   `gorm:"not null"                                      json:"-"`
	Roles         []string `gorm:"serializer:json"                               json:"roles"`
	EmailVerified bool     `gorm:"default:false"                                 json:"email_verified"`
	CartID        *uint    `json:"cart_id,omitempty"`
	ProfileID     *uint    `json:"profile_id,omitempty"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Profile struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint   `gorm:"index;not null"           json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Cart struct {
	ID           uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint          `gorm:"index;not null"           json:"user_id"`
	TotalItems   int           `gorm:"default:0"                json:"total_items"`
	CartProducts []CartProduct `gorm:"foreignKey:CartID"        json:"cart_products"`
}

type CartProduct struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID     uint    `gorm:"index;not null"           json:"cart_id"`
	ProductID  uint    `gorm:"not null"                 json:"product_id"`
	Quantity   uint    `gorm:"default:1"                json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

type Product struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"not null"                 json:"name"`
	Description   string    `json:"description"`
	CurrentPrice  float64   `gorm:"not null"                 json:"current_price"`
	PreviousPrice float64   `json:"previous_price"`
	Quantity      uint      `json:"quantity"`
	InStock       bool      `gorm:"default:true"             json:"in_stock"`
	Sales         uint      `gorm:"default:0"                json:"sales"`
	SubCategoryID *uint     `gorm:"index"                    json:"sub_category_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Category struct {
	ID            uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string        `gorm:"unique;not null"          json:"name"`
	Description   string        `json:"description"`
	Icon          string        `json:"icon"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	SubCategories []SubCategory `gorm:"foreignKey:CategoryID"    json:"sub_categories"`
}

type SubCategory struct {
	ID          uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string           `gorm:"unique;not null"          json:"name"`
	Description string           `json:"description"`
	Icon        string           `json:"icon"`
	References  []int            `gorm:"serializer:json"          json:"references"`
	CategoryID  uint             `gorm:"index;not null"           json:"category_id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Products    []Product        `gorm:"foreignKey:SubCategoryID" json:"products"`
	Tags        []SubCategoryTag `gorm:"foreignKey:SubCategoryID" json:"tags"`
}

type SubCategoryTag struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string `gorm:"not null"                 json:"name"`
	SubCategoryID uint   `gorm:"index;not null"           json:"sub_category_id"`
}

type Order struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint    `gorm:"index;not null"           json:"user_id"`
	Address   string  `json:"address"`
	Comment   string  `json:"comment"`
	Total     float64 `json:"total"`
	Status    string  `gorm:"default:new"              json:"status"`
	CreatedAt int64   `json:"created_at"`
}

// OrderItem is a snapshot of a cart line item at checkout time; later price
// changes on the product do not touch it.
type OrderItem struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    uint    `gorm:"index;not null"           json:"order_id"`
	UserID     uint    `gorm:"index;not null"           json:"user_id"`
	ProductID  uint    `gorm:"not null"                 json:"product_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   uint    `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

type Payment struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint    `gorm:"index;not null"           json:"user_id"`
	OrderID    uint    `gorm:"index;not null"           json:"order_id"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
	Status     string  `gorm:"default:created"          json:"status"`
	CustomerID string  `json:"customer_id"`
}

type Invoice struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   uint      `gorm:"index;not null"           json:"user_id"`
	OrderID  uint      `gorm:"index;not null"           json:"order_id"`
	Number   string    `gorm:"unique;not null"          json:"number"`
	Total    float64   `json:"total"`
	IssuedAt time.Time `json:"issued_at"`
}

type Subscriber struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email          string `gorm:"unique;not null"          json:"email"`
	Endpoint       string `gorm:"not null"                 json:"endpoint"`
	ExpirationTime *int64 `json:"expiration_time,omitempty"`
	P256dh         string `json:"p256dh"`
	Auth           string `json:"auth"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"not null"                 json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscriberNotification is the fan-out join row: one per subscriber per
// broadcast, kept for notification history.
type SubscriberNotification struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SubscriberID   uint   `gorm:"index;not null"           json:"subscriber_id"`
	NotificationID uint   `gorm:"index;not null"           json:"notification_id"`
	Title          string `json:"title"`
	Body           string `json:"body"`
}

type EmailVerification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"index;not null"           json:"email"`
	Token     string    `gorm:"index;not null"           json:"token"`
	Timestamp time.Time `json:"timestamp"`
}

type ForgottenPassword struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email            string    `gorm:"index;not null"           json:"email"`
	NewPasswordToken string    `gorm:"index;not null"           json:"new_password_token"`
	Timestamp        time.Time `json:"timestamp"`
}
