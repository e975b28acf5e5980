package catalog

import (
	"encoding/json"
	"strings"
)

// ---------- TABLES ----------

type TableRequest struct {
	Number   string `json:"number" binding:"required" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
}

// ---------- MENU ----------

type MenuItemRequest struct {
	Name       string       `json:"name" binding:"required" validate:"required"`
	Price      float64      `json:"price" validate:"required,gt=0"`
	Categories CategoryList `json:"categories" validate:"required,min=1,dive,required"`
}

// CategoryList accepts either a JSON array or a single comma-separated
// string such as "Mains, Grill".
type CategoryList []string

func (l *CategoryList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		var joined string
		if err2 := json.Unmarshal(data, &joined); err2 != nil {
			return err
		}
		list = strings.Split(joined, ",")
	}

	out := make([]string, 0, len(list))
	for _, c := range list {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	*l = out
	return nil
}

// ---------- WAITERS ----------

// WaiterRequest creates or replaces a waiter account. Password may be
// omitted on update to keep the current one.
type WaiterRequest struct {
	Name     string `json:"name" binding:"required" validate:"required"`
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Password string `json:"password"`
}
