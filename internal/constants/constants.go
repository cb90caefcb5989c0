package constants

// 订单状态常量
const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
	OrderStatusReturned   = "RETURNED"
	OrderStatusRefunded   = "REFUNDED"
)

// ActiveOrderStatuses 计入下单准入限制的未完成状态
var ActiveOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
}

// 支付方式常量
const (
	PaymentMethodCOD    = "COD"
	PaymentMethodCard   = "CARD"
	PaymentMethodPaypal = "PAYPAL"
)

// 会员等级常量
const (
	LoyaltyTierBronze = "BRONZE"
	LoyaltyTierSilver = "SILVER"
	LoyaltyTierGold   = "GOLD"
)

// 积分流水类型常量
const (
	LoyaltyHistoryEarn  = "EARN"
	LoyaltyHistorySpend = "SPEND"
	LoyaltyHistoryBonus = "BONUS"
)

// 商品颜色常量
const (
	ColorNone   = "NONE"
	ColorBlack  = "BLACK"
	ColorWhite  = "WHITE"
	ColorRed    = "RED"
	ColorBlue   = "BLUE"
	ColorGreen  = "GREEN"
	ColorBeige  = "BEIGE"
	ColorBrown  = "BROWN"
	ColorGrey   = "GREY"
	ColorPink   = "PINK"
	ColorYellow = "YELLOW"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 通知类型常量
const (
	NotificationTypeOrderConfirmed = "order_confirmed"
	NotificationTypeOrderStatus    = "order_status"
	NotificationTypeLoyalty        = "loyalty"
)

// ShippingCities 支持配送的城市
var ShippingCities = []string{
	"AGADIR", "AL_HOCEIMA", "AZILAL", "BENI_MELLAL", "BEN_SLIMANE", "BERKANE",
	"BERRECHID", "BOUSKOURA", "CASABLANCA", "CHEFCHAOUEN", "DAKHLA", "DAR_BOUAZZA",
	"EL_JADIDA", "ERRACHIDIA", "ESSAOUIRA", "FES", "FNIDEQ", "GUELMIM", "IFRANE",
	"KENITRA", "KHEMISSET", "KHENIFRA", "KHOURIBGA", "LAAYOUNE", "LARACHE",
	"MARRAKECH", "MARTIL", "MEKNES", "MOHAMMEDIA", "NADOR", "OUARZAZATE", "OUJDA",
	"RABAT", "SAFI", "SALE", "SETTAT", "SIDI_KACEM", "SKHIRAT", "TANGER",
	"TAROUDANT", "TAZA", "TEMARA", "TETOUAN", "TIZNIT", "OTHER",
}

// 异步队列常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskOrderConfirmation = "order:confirmation"
	TaskOrderStatusEmail  = "order:status_email"
)
