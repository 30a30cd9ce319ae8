package usecase

import (
	"strings"

	"github.com/itinerary-microservice/internal/domain"
	"go.uber.org/zap"
)

const (
	minLocationLen          = 3
	minLogisticsLocationLen = 15
	minVagueTitleLocationLen = 25

	// до этой длины вхождение расплывчатого слова дисквалифицирует строку целиком
	containsCheckMaxLen = 20
)

// vagueTerms - слова, по которым нельзя получить осмысленную точку на карте:
// еда, проживание, транспорт, отдых, обобщённые места
var vagueTerms = []string{
	// meals
	"breakfast", "lunch", "dinner", "brunch", "meal", "snack", "food",
	"cafe", "restaurant", "street food",
	// lodging
	"hotel", "hostel", "accommodation", "check-in", "check-out", "checkin", "checkout",
	// transit
	"airport", "station", "train", "bus", "taxi", "transfer", "flight", "transport",
	// rest / leisure
	"rest", "relax", "free time", "leisure", "explore", "shopping", "walk",
	// generic places
	"city center", "city centre", "downtown", "old town", "market", "beach", "park",
}

// AdmissibilityFilter решает, достаточно ли конкретна строка локации для геокодинга.
// Внешних вызовов не делает; каждое решение публикуется в лог структурным событием.
type AdmissibilityFilter struct {
	logger *zap.Logger
}

// NewAdmissibilityFilter создает новый AdmissibilityFilter
func NewAdmissibilityFilter(logger *zap.Logger) *AdmissibilityFilter {
	return &AdmissibilityFilter{logger: logger}
}

// IsAdmissible возвращает true, если локацию активности стоит геокодировать
func (f *AdmissibilityFilter) IsAdmissible(activity domain.Activity) bool {
	admissible, reason := f.decide(activity)

	if admissible {
		f.logger.Debug("Location admitted for geocoding",
			zap.String("activity_id", activity.ID.String()),
			zap.String("item_type", string(activity.ItemType)),
			zap.String("location", strings.TrimSpace(deref(activity.Location))))
	} else {
		f.logger.Debug("Location rejected for geocoding",
			zap.String("activity_id", activity.ID.String()),
			zap.String("item_type", string(activity.ItemType)),
			zap.String("location", strings.TrimSpace(deref(activity.Location))),
			zap.String("reason", reason))
	}

	return admissible
}

func (f *AdmissibilityFilter) decide(activity domain.Activity) (bool, string) {
	if activity.Location == nil {
		return false, "location_missing"
	}

	location := strings.TrimSpace(*activity.Location)
	if len(location) < minLocationLen {
		return false, "location_too_short"
	}

	lower := strings.ToLower(location)
	for _, term := range vagueTerms {
		if lower == term {
			return false, "location_vague"
		}
		if len(lower) < containsCheckMaxLen && strings.Contains(lower, term) {
			return false, "location_vague"
		}
	}

	// Логистические типы получают более строгие пороги: их названия
	// систематически неконкретны ("Lunch", "Hotel", "Transfer")
	if activity.ItemType.IsLogistics() {
		if len(location) < minLogisticsLocationLen {
			return false, "logistics_location_too_short"
		}

		if titleIsVague(activity.Title) && len(location) < minVagueTitleLocationLen {
			return false, "vague_title_location_too_short"
		}
	}

	return true, ""
}

// titleIsVague - название начинается с расплывчатого слова или совпадает с ним
func titleIsVague(title string) bool {
	lower := strings.ToLower(strings.TrimSpace(title))
	for _, term := range vagueTerms {
		if lower == term || strings.HasPrefix(lower, term) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
