package main

import (
	"github.com/kbukum/routekit/config"
	"github.com/kbukum/routekit/driver"
	"github.com/kbukum/routekit/observability"
	"github.com/kbukum/routekit/validation"
)

// AppConfig is the configuration of the routedemo binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Driver    driver.Config        `yaml:"driver" mapstructure:"driver"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
	Demo      DemoConfig           `yaml:"demo" mapstructure:"demo"`
}

// DemoConfig shapes the demo graph: Count integers are split into Buckets
// queues by residue and merged back.
type DemoConfig struct {
	Count   int `yaml:"count" mapstructure:"count" validate:"gte=0"`
	Buckets int `yaml:"buckets" mapstructure:"buckets" validate:"gte=1,lte=64"`

	// Unrouted lists residues left without an output route; the split
	// halts on the first value that maps to one.
	Unrouted []int `yaml:"unrouted" mapstructure:"unrouted" validate:"dive,gte=0"`
}

func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Driver.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	if c.Demo.Buckets == 0 {
		c.Demo.Buckets = 2
	}
}

func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Driver.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Telemetry); err != nil {
		return err
	}
	return validation.ValidateStruct(&c.Demo)
}
