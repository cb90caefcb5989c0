package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// generateOrderNo 订单号：ORD-<yyyymmddHHMMSS>-<userID>-<随机后缀>
// 同一用户同一秒内的多笔订单依赖随机后缀区分，唯一索引兜底
func generateOrderNo(userID uint, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%d-%s", now.Format("20060102150405"), userID, suffix)
}
