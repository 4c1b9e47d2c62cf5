// Package validation checks configuration structs and wiring.
//
// Struct tag validation uses the go-playground validator; field names in
// messages follow the mapstructure tag so they match the config file keys.
//
//	type Config struct {
//	    Mode string `mapstructure:"mode" validate:"oneof=poll notify"`
//	}
//	err := validation.ValidateStruct(cfg)
//
// Programmatic validation collects every problem before failing:
//
//	v := validation.New()
//	v.Check(name != "", "name", "is required")
//	err := v.Err()
package validation
