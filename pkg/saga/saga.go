package saga

// Топики шины. Каждый топик используется как ключ маршрутизации в общем exchange.
const (
	TopicOrderCreated      = "order.created"
	TopicPaymentProcessed  = "payment.processed"
	TopicInventoryChecked  = "inventory.checked"
	TopicEmailSend         = "email.send"
	TopicShippingSchedule  = "shipping.schedule"
	TopicShippingProcessed = "shipping.processed"
)

// TotalAmount считает сумму заказа как сумму price*quantity по позициям
func TotalAmount(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// CloneItems копирует позиции, чтобы исходный срез нельзя было изменить через сообщение
func CloneItems(items []OrderItem) []OrderItem {
	if items == nil {
		return nil
	}
	out := make([]OrderItem, len(items))
	copy(out, items)
	return out
}
