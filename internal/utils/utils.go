package utils

import (
	"database/sql"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Format utilisé pour tous les timestamps exportés (identique à datetime() de SQLite)
const TimestampLayout = "2006-01-02 15:04:05"

// CoreDataEpochOffset is the number of seconds between 1970-01-01 and
// 2001-01-01 UTC, the reference date of Core Data timestamps.
const CoreDataEpochOffset int64 = 978307200

// ConcatSeparator sépare les valeurs agrégées par group_concat (ASCII unit separator)
const ConcatSeparator = "\x1f"

// ToCoreData convertit un time.Time en secondes depuis l'epoch Core Data
func ToCoreData(t time.Time) float64 {
	return float64(t.Unix()-CoreDataEpochOffset) + float64(t.Nanosecond())/float64(time.Second)
}

// FromCoreData convertit des secondes Core Data en time.Time UTC
func FromCoreData(seconds float64) time.Time {
	whole := math.Floor(seconds)
	nanos := int64(math.Round((seconds - whole) * float64(time.Second)))
	return time.Unix(CoreDataEpochOffset+int64(whole), nanos).UTC()
}

// SplitCoOccurrence découpe le résultat d'un group_concat en liste triée et dédoublonnée.
// Retourne nil quand rien n'a été agrégé.
func SplitCoOccurrence(concat sql.NullString) []string {
	if !concat.Valid || concat.String == "" {
		return nil
	}

	var values []string
	for _, v := range strings.Split(concat.String, ConcatSeparator) {
		if v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}

	slices.Sort(values)
	return slices.Compact(values)
}

// NullStringPtr retourne nil pour NULL, sinon un pointeur vers la valeur
func NullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// FormatValue formats a raw column value for the text reports. NULL is rendered
// as "null" and whole floats keep one decimal ("23.0").
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		s := strconv.FormatFloat(val, 'f', -1, 64)
		// Un flottant garde sa partie décimale : 23.0 et non 23
		if !math.IsInf(val, 0) && !math.IsNaN(val) && !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.UTC().Format(TimestampLayout)
	default:
		return fmt.Sprint(val)
	}
}
