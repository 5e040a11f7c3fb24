package models

type ActivityType struct {
	Key  string
	Name string
	MET  float64
}

// MET values from the compendium of physical activities (moderate effort).
var activityTypes = map[string]ActivityType{
	"walking": {
		Key:  "walking",
		Name: "Walking",
		MET:  3.5,
	},
	"running": {
		Key:  "running",
		Name: "Running",
		MET:  9.8,
	},
	"cycling": {
		Key:  "cycling",
		Name: "Cycling",
		MET:  7.5,
	},
	"hiking": {
		Key:  "hiking",
		Name: "Hiking",
		MET:  6.0,
	},
}

func GetActivityType(key string) (ActivityType, bool) {
	at, exists := activityTypes[key]
	return at, exists
}
