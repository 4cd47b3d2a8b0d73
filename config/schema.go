package config

import (
	"regexp"

	log "go.arcalot.io/log/v2"
	"go.flow.arcalot.io/pluginsdk/schema"
	"go.flow.arcalot.io/stepmonitor/internal/util"
)

func getConfigSchema() *schema.TypedScopeSchema[*Config] {
	return schema.NewTypedScopeSchema[*Config](
		schema.NewStructMappedObjectSchema[*Config](
			"Config",
			map[string]*schema.PropertySchema{
				"log": schema.NewPropertySchema(
					schema.NewRefSchema("LogConfig", nil),
					schema.NewDisplayValue(
						schema.PointerTo("Logging"),
						schema.PointerTo("Logging configuration"),
						nil,
					),
					false,
					nil,
					nil,
					nil,
					schema.PointerTo("{}"),
					nil,
				),
				"steps": schema.NewPropertySchema(
					schema.NewListSchema(
						schema.NewStringSchema(
							schema.IntPointer(1),
							schema.IntPointer(255),
							regexp.MustCompile("^[a-zA-Z0-9_-]+$"),
						),
						nil,
						nil,
					),
					schema.NewDisplayValue(
						schema.PointerTo("Steps"),
						schema.PointerTo("Built-in steps to offer to the orchestrator. Offers all steps if empty."),
						nil,
					),
					false,
					nil,
					nil,
					nil,
					nil,
					nil,
				),
				"metrics": schema.NewPropertySchema(
					schema.NewRefSchema("MetricsConfig", nil),
					schema.NewDisplayValue(
						schema.PointerTo("Metrics"),
						schema.PointerTo("Prometheus metrics endpoint configuration"),
						nil,
					),
					false,
					nil,
					nil,
					nil,
					schema.PointerTo("{}"),
					nil,
				),
			},
		),
		schema.NewStructMappedObjectSchema[log.Config](
			"LogConfig",
			map[string]*schema.PropertySchema{
				"level": schema.NewPropertySchema(
					schema.NewStringEnumSchema(map[string]*schema.DisplayValue{
						string(log.LevelDebug):   {NameValue: schema.PointerTo("Debug")},
						string(log.LevelInfo):    {NameValue: schema.PointerTo("Informational")},
						string(log.LevelWarning): {NameValue: schema.PointerTo("Warnings")},
						string(log.LevelError):   {NameValue: schema.PointerTo("Errors")},
					}),
					schema.NewDisplayValue(
						schema.PointerTo("Log level"),
						schema.PointerTo("Minimum level of the local monitor logs."),
						nil,
					),
					false,
					nil,
					nil,
					nil,
					schema.PointerTo(util.JSONEncode(log.LevelInfo)),
					nil,
				),
				"destination": schema.NewPropertySchema(
					schema.NewStringEnumSchema(map[string]*schema.DisplayValue{
						string(log.DestinationStdout): {NameValue: schema.PointerTo("Standard error")},
					}),
					schema.NewDisplayValue(
						schema.PointerTo("Log destination"),
						schema.PointerTo(
							"Where the logs should be written to. The standard output is reserved for the orchestrator, "+
								"so the console destination writes to the standard error.",
						),
						nil,
					),
					false,
					nil,
					nil,
					nil,
					schema.PointerTo(util.JSONEncode(log.DestinationStdout)),
					nil,
				),
			},
		),
		schema.NewStructMappedObjectSchema[MetricsConfig](
			"MetricsConfig",
			map[string]*schema.PropertySchema{
				"listen": schema.NewPropertySchema(
					schema.NewStringSchema(schema.IntPointer(1), nil, nil),
					schema.NewDisplayValue(
						schema.PointerTo("Listen address"),
						schema.PointerTo("Address to serve /metrics on, for example :9090. Disabled if not set."),
						nil,
					),
					false,
					nil,
					nil,
					nil,
					nil,
					nil,
				),
			},
		),
	)
}
