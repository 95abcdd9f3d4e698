package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/codegen"
	"github.com/streamsql/streamsql/config"
	"github.com/streamsql/streamsql/graph"
	"github.com/streamsql/streamsql/physical"
	"github.com/streamsql/streamsql/serialization"
	"github.com/streamsql/streamsql/streams/inmemory"
)

var format string
var configPath string

var rootCmd = &cobra.Command{
	Use:   "planviz",
	Short: "Render the execution plan of an example streaming pipeline",
	Long: `planviz builds a representative physical plan (an orders stream filtered,
rekeyed, enriched against a users table, projected and written to a sink over
the in-memory runtime) and renders it as an indented text plan, a graphviz
dot graph, or a table of the final schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		if configPath != "" {
			loaded, err := config.ReadConfig(configPath)
			if err != nil {
				return fmt.Errorf("couldn't read config: %w", err)
			}
			cfg = loaded
		}

		sink, err := buildExamplePlan(cfg)
		if err != nil {
			return err
		}

		switch format {
		case "plan":
			fmt.Print(sink.ExecutionPlan(""))
		case "dot":
			g, err := graph.Show(sink.Visualize())
			if err != nil {
				return fmt.Errorf("couldn't render graph: %w", err)
			}
			fmt.Println(g.String())
		case "schema":
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Field", "Type"})
			table.SetAutoFormatHeaders(false)
			for _, field := range sink.Schema().Fields {
				table.Append([]string{field.Name, field.Type.String()})
			}
			table.Render()
		default:
			return fmt.Errorf("unknown format %q, want plan, dot or schema", format)
		}
		return nil
	},
}

func buildExamplePlan(cfg *config.Config) (*physical.Stream, error) {
	registry := codegen.NewRegistry()
	err := registry.Register("UCASE", codegen.UdfDescriptor{
		New: func() codegen.Udf { return upperUdf{} },
		OutputType: func(args []streamsql.Type) (streamsql.Type, error) {
			if len(args) != 1 || args[0].TypeID != streamsql.TypeIDString {
				return streamsql.Null, fmt.Errorf("UCASE takes one STRING argument")
			}
			return streamsql.String, nil
		},
	})
	if err != nil {
		return nil, err
	}

	broker := inmemory.NewBroker()

	ordersSchema := streamsql.SystemSchema(
		streamsql.Field{Name: "ORDER_ID", Type: streamsql.Int},
		streamsql.Field{Name: "USER_ID", Type: streamsql.String},
		streamsql.Field{Name: "AMOUNT", Type: streamsql.Float},
	)
	usersSchema := streamsql.SystemSchema(
		streamsql.Field{Name: "NAME", Type: streamsql.String},
		streamsql.Field{Name: "CITY", Type: streamsql.String},
	)

	joinFields := make([]streamsql.Field, 0, len(ordersSchema.Fields)+len(usersSchema.Fields))
	joinFields = append(joinFields, ordersSchema.Fields...)
	for _, field := range usersSchema.Fields {
		joinFields = append(joinFields, streamsql.Field{Name: "U_" + field.Name, Type: field.Type})
	}
	joinSchema := streamsql.NewSchema(joinFields...)

	orderKey := streamsql.Field{Name: "ORDER_ID", Type: streamsql.Int}
	source := physical.NewStream(
		ordersSchema,
		&orderKey,
		inmemory.NewStream(broker, nil),
		nil,
		physical.NodeTypeSource,
		physical.WithRegistry(registry),
	)
	users := physical.NewTable(usersSchema, &streamsql.Field{Name: streamsql.RowKeyName, Type: streamsql.String}, inmemory.NewTable(broker, nil), nil)

	filtered, err := source.Filter(codegen.NewBinary(
		codegen.OpGreater,
		codegen.NewColumnRef("AMOUNT"),
		codegen.NewLiteral(streamsql.NewFloat(10)),
	))
	if err != nil {
		return nil, err
	}
	rekeyed, err := filtered.SelectKey(streamsql.Field{Name: "USER_ID", Type: streamsql.String})
	if err != nil {
		return nil, err
	}
	joined, err := rekeyed.LeftJoin(
		users,
		joinSchema,
		streamsql.Field{Name: "USER_ID", Type: streamsql.String},
		serialization.NewJSONRowSerde(rekeyed.Schema()),
	)
	if err != nil {
		return nil, err
	}
	projected, err := joined.Map([]physical.NamedExpression{
		physical.NewNamedExpression("ORDER_ID", codegen.NewColumnRef("ORDER_ID")),
		physical.NewNamedExpression("USER_NAME", codegen.NewFunctionCall("UCASE", codegen.NewColumnRef("U_NAME"))),
		physical.NewNamedExpression("DOUBLE_AMOUNT", codegen.NewBinary(
			codegen.OpMultiply,
			codegen.NewColumnRef("AMOUNT"),
			codegen.NewLiteral(streamsql.NewFloat(2)),
		)),
	})
	if err != nil {
		return nil, err
	}
	return projected.Into(
		"enriched_orders",
		serialization.NewJSONRowSerde(projected.Schema()),
		map[int]bool{},
		cfg,
		broker,
	)
}

type upperUdf struct{}

func (upperUdf) Evaluate(args ...streamsql.Value) (streamsql.Value, error) {
	if len(args) != 1 {
		return streamsql.ZeroValue, fmt.Errorf("UCASE takes one argument, got %d", len(args))
	}
	if args[0].IsNull() {
		return streamsql.NewNull(), nil
	}
	return streamsql.NewString(strings.ToUpper(args[0].Str)), nil
}

func main() {
	rootCmd.Flags().StringVar(&format, "format", "plan", "output format: plan, dot or schema")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a yaml configuration file")
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
