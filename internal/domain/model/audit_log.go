package model

import "time"

type AuditAction string

const (
	//伝票作成
	AuditActionCreateNote AuditAction = "CREATE_NOTE"
	//売上確定（在庫を消費）
	AuditActionConfirmSale AuditAction = "CONFIRM_SALE"
	//在庫の手動設定
	AuditActionUpdateStock AuditAction = "UPDATE_STOCK"
	//参照のない商品を削除
	AuditActionDeleteProduct AuditAction = "DELETE_PRODUCT"
	//伝票のない顧客を削除
	AuditActionDeleteCustomer AuditAction = "DELETE_CUSTOMER"
)

type AuditResourceType string

const (
	AuditResourceProduct  AuditResourceType = "product"
	AuditResourceNote     AuditResourceType = "sales_note"
	AuditResourceCustomer AuditResourceType = "customer"
)

// どのリソースの何が変わったか（変更前/変更後）
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//JSON文字列
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
