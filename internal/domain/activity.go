package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemType - тип элемента маршрута
type ItemType string

const (
	ItemTypeDeparture     ItemType = "departure"
	ItemTypeArrival       ItemType = "arrival"
	ItemTypeHotelCheckin  ItemType = "hotel_checkin"
	ItemTypeHotelCheckout ItemType = "hotel_checkout"
	ItemTypeActivity      ItemType = "activity"
	ItemTypeMeal          ItemType = "meal"
	ItemTypeTransport     ItemType = "transport"
	ItemTypeFreeTime      ItemType = "free_time"
)

// IsLogistics - типы с типично неконкретными названиями (обед, отель, трансфер),
// для которых фильтр допустимости применяет более строгие пороги
func (t ItemType) IsLogistics() bool {
	switch t {
	case ItemTypeMeal, ItemTypeTransport, ItemTypeFreeTime, ItemTypeHotelCheckin, ItemTypeHotelCheckout:
		return true
	}
	return false
}

// Trip - поездка (входной контракт от сервиса персистентности)
type Trip struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Destination string    `json:"destination" db:"destination"`
	StartDate   time.Time `json:"start_date" db:"start_date"`
}

// DateForDay возвращает календарную дату дня поездки (day_number >= 1)
func (t Trip) DateForDay(dayNumber int) time.Time {
	return t.StartDate.AddDate(0, 0, dayNumber-1)
}

// Activity - элемент маршрута одного дня. Неизменяемый с точки зрения пайплайна.
type Activity struct {
	ID        uuid.UUID `json:"id" db:"id"`
	DayNumber int       `json:"day_number" db:"day_number"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	Title     string    `json:"title" db:"title"`
	Location  *string   `json:"location,omitempty" db:"location"`
	ItemType  ItemType  `json:"item_type" db:"item_type"`
	Completed bool      `json:"completed" db:"completed"`
}

// GeocodedActivity - активность с разрешёнными координатами.
// Инвариант: расстояние до якоря назначения не превышает максимального радиуса.
type GeocodedActivity struct {
	Activity
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	ResolvedName string  `json:"resolved_name"`
}
