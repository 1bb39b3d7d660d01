package agg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xwb1989/sqlparser"

	"github.com/hugr-lab/aggql/catalog"
	"github.com/hugr-lab/aggql/filter"
)

func salesCatalog() *catalog.ColumnTypes {
	return catalog.MustNew(map[string]catalog.TypeID{
		"region":      catalog.TypeIDVarchar,
		"fiscal_year": catalog.TypeIDInteger,
		"amount":      catalog.TypeIDDecimal,
		"order_date":  catalog.TypeIDDate,
		"store":       catalog.TypeIDVarchar,
	})
}

func dim(col, op string, values ...string) *filter.Dimension {
	return &filter.Dimension{ColumnName: col, FilterType: op, Values: values}
}

func requireSelect(t *testing.T, sql string) {
	t.Helper()
	stmt, err := sqlparser.Parse(sql)
	require.NoError(t, err, sql)
	_, ok := stmt.(*sqlparser.Select)
	require.True(t, ok, "expected SELECT, got %T", stmt)
}

func TestRenderAggregate(t *testing.T) {
	tests := []struct {
		agg  AggType
		want string
	}{
		{Sum, "SUM(amount)"},
		{"AVG", "AVG(amount)"},
		{"Max", "MAX(amount)"},
		{Min, "MIN(amount)"},
		{Distinct, "COUNT(DISTINCT amount)"},
		{Count, "COUNT(amount)"},
		{"", "COUNT(amount)"},
		{"median", "COUNT(amount)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.agg), func(t *testing.T) {
			assert.Equal(t, tt.want, RenderAggregate(ValueConfig{Column: "amount", AggType: tt.agg}))
		})
	}
}

func TestBuildSQL(t *testing.T) {
	cat := salesCatalog()

	tests := []struct {
		name string
		cfg  AggConfig
		opts Options
		want string
	}{
		{
			name: "values only",
			cfg:  AggConfig{Values: []ValueConfig{{Column: "amount", AggType: Sum}}},
			opts: Options{Table: "sales"},
			want: "SELECT SUM(amount) FROM sales",
		},
		{
			name: "dimensions only",
			cfg:  AggConfig{Rows: []*filter.Dimension{dim("region", "")}},
			opts: Options{Table: "sales"},
			want: "SELECT region FROM sales GROUP BY region",
		},
		{
			name: "columns before rows",
			cfg: AggConfig{
				Rows:    []*filter.Dimension{dim("region", "=", "EU", "US")},
				Columns: []*filter.Dimension{dim("fiscal_year", "")},
				Values:  []ValueConfig{{Column: "amount", AggType: Sum}, {Column: "store", AggType: Distinct}},
			},
			opts: Options{Table: "sales"},
			want: "SELECT fiscal_year, region, SUM(amount), COUNT(DISTINCT store) FROM sales " +
				"WHERE region IN ('EU', 'US') GROUP BY fiscal_year, region",
		},
		{
			name: "duplicate dimensions",
			cfg: AggConfig{
				Rows:    []*filter.Dimension{dim("region", ""), dim("fiscal_year", "")},
				Columns: []*filter.Dimension{dim("region", "")},
				Values:  []ValueConfig{{Column: "amount"}},
			},
			opts: Options{Table: "sales"},
			want: "SELECT region, fiscal_year, COUNT(amount) FROM sales GROUP BY region, fiscal_year",
		},
		{
			name: "where order rows columns filters",
			cfg: AggConfig{
				Rows:    []*filter.Dimension{dim("region", "≠", "EU", filter.NullSentinel)},
				Columns: []*filter.Dimension{dim("fiscal_year", "[a,b]", "2020", "2024")},
				Filters: []filter.Node{
					dim("order_date", ">", "2020-01-01"),
					&filter.Composite{Type: filter.Or, Nodes: []filter.Node{
						dim("store", "=", "A"),
						dim("amount", "<", "100"),
					}},
				},
				Values: []ValueConfig{{Column: "amount", AggType: Avg}},
			},
			opts: Options{Table: "sales"},
			want: "SELECT fiscal_year, region, AVG(amount) FROM sales " +
				"WHERE (region NOT IN ('EU') AND region IS NOT NULL)\n" +
				"AND (fiscal_year>=2020 AND fiscal_year<=2024)\n" +
				"AND (order_date>'2020-01-01')\n" +
				"AND (store IN ('A') OR (amount<100)) " +
				"GROUP BY fiscal_year, region",
		},
		{
			name: "subquery default alias",
			cfg:  AggConfig{Values: []ValueConfig{{Column: "amount", AggType: Max}}},
			opts: Options{Table: "SELECT * FROM sales", HasSubQuery: true},
			want: "SELECT MAX(amount) FROM (SELECT * FROM sales) agg_view",
		},
		{
			name: "subquery custom alias",
			cfg:  AggConfig{Rows: []*filter.Dimension{dim("region", "")}},
			opts: Options{Table: "SELECT region FROM sales", HasSubQuery: true, SubqueryAlias: "s"},
			want: "SELECT region FROM (SELECT region FROM sales) s GROUP BY region",
		},
		{
			name: "column mapping",
			cfg: AggConfig{
				Rows:   []*filter.Dimension{dim("region", "=", "EU")},
				Values: []ValueConfig{{Column: "amount", AggType: Sum}},
			},
			opts: Options{Table: "sales", Encoder: &filter.EncoderOptions{
				ColumnMapping: map[string]string{"region": "r", "amount": "amt"},
			}},
			want: "SELECT r, SUM(amt) FROM sales WHERE r IN ('EU') GROUP BY r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSQL(tt.cfg, cat, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			requireSelect(t, got)

			again, err := BuildSQL(tt.cfg, cat, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestBuildSQL_Errors(t *testing.T) {
	cat := salesCatalog()

	_, err := BuildSQL(AggConfig{}, cat, Options{Table: "sales"})
	require.ErrorIs(t, err, ErrEmptySelect)

	_, err = BuildSQL(AggConfig{Values: []ValueConfig{{Column: "amount"}}}, cat, Options{})
	require.ErrorIs(t, err, ErrMissingTable)

	_, err = BuildSQL(AggConfig{
		Rows:   []*filter.Dimension{dim("country", "=", "FR")},
		Values: []ValueConfig{{Column: "amount"}},
	}, cat, Options{Table: "sales"})
	var lookupErr *catalog.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "country", lookupErr.Column)

	_, err = BuildSQL(AggConfig{
		Filters: []filter.Node{dim("fiscal_year", "between", "1", "2")},
		Values:  []ValueConfig{{Column: "amount"}},
	}, cat, Options{Table: "sales"})
	var opErr *filter.UnsupportedOperatorError
	require.ErrorAs(t, err, &opErr)
}

func TestBuildDimensionValuesSQL(t *testing.T) {
	cfg := AggConfig{
		Rows:    []*filter.Dimension{dim("region", "=", "EU")},
		Columns: []*filter.Dimension{dim("fiscal_year", ">", "2020")},
		Filters: []filter.Node{
			&filter.Composite{Type: filter.Or, Nodes: []filter.Node{
				dim("region", "=", "US"),
				dim("region", "=", filter.NullSentinel),
			}},
			dim("store", "=", "A"),
		},
	}

	got, err := BuildDimensionValuesSQL(cfg, "region", salesCatalog(), Options{Table: "sales"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT region FROM sales WHERE (fiscal_year>2020)\nAND store IN ('A') GROUP BY region", got)
	requireSelect(t, got)

	got, err = BuildDimensionValuesSQL(AggConfig{}, "store", salesCatalog(), Options{Table: "sales"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT store FROM sales GROUP BY store", got)

	_, err = BuildDimensionValuesSQL(cfg, " ", salesCatalog(), Options{Table: "sales"})
	require.ErrorIs(t, err, ErrEmptySelect)
}

func TestBuildDSL(t *testing.T) {
	cfg := AggConfig{
		Rows:    []*filter.Dimension{dim("region", "=", "EU", filter.NullSentinel)},
		Columns: []*filter.Dimension{dim("fiscal_year", "")},
		Filters: []filter.Node{dim("amount", "[a,b)", "10", "20")},
	}

	doc, err := BuildDSL(cfg, salesCatalog(), Options{})
	require.NoError(t, err)
	b, err := doc.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"bool":{"filter":[
		{"bool":{"should":[{"term":{"region":"EU"}},{"bool":{"must_not":[{"exists":{"field":"region"}}]}}],"minimum_should_match":1}},
		{"range":{"amount":{"gte":10,"lt":20}}}
	]}}`, string(b))

	doc, err = BuildDSL(AggConfig{}, nil, Options{})
	require.NoError(t, err)
	b, err = doc.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"match_all":{}}`, string(b))
}

func TestBuildSearch(t *testing.T) {
	cfg := AggConfig{
		Rows:    []*filter.Dimension{dim("region", "")},
		Columns: []*filter.Dimension{dim("fiscal_year", ""), dim("region", "")},
		Values:  []ValueConfig{{Column: "amount", AggType: Sum}, {Column: "store", AggType: Distinct}, {Column: "amount"}},
	}

	doc, err := BuildSearch(cfg, salesCatalog(), Options{BucketSize: 50})
	require.NoError(t, err)
	b, err := doc.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"size": 0,
		"query": {"match_all": {}},
		"aggs": {"fiscal_year": {
			"terms": {"field": "fiscal_year", "size": 50},
			"aggs": {"region": {
				"terms": {"field": "region", "size": 50},
				"aggs": {
					"sum_amount": {"sum": {"field": "amount"}},
					"distinct_store": {"cardinality": {"field": "store"}},
					"count_amount": {"value_count": {"field": "amount"}}
				}
			}}
		}}
	}`, string(b))

	doc, err = BuildSearch(AggConfig{Values: []ValueConfig{{Column: "amount", AggType: "AVG"}}}, nil, Options{})
	require.NoError(t, err)
	b, err = doc.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"size":0,"query":{"match_all":{}},"aggs":{"avg_amount":{"avg":{"field":"amount"}}}}`, string(b))

	_, err = BuildSearch(AggConfig{}, nil, Options{})
	require.ErrorIs(t, err, ErrEmptySelect)
}

func TestDefinition_RoundTrip(t *testing.T) {
	def := Definition{
		Rows:    []filter.Config{{ColumnName: "region", FilterType: "=", Values: []string{"EU"}}},
		Columns: []filter.Config{{ColumnName: "fiscal_year"}},
		Filters: []filter.Config{{Type: "OR", Children: []filter.Config{
			{ColumnName: "amount", FilterType: ">", Values: []string{"1"}},
			{ColumnName: "amount", FilterType: "<", Values: []string{"0"}},
		}}},
		Values: []ValueConfig{{Column: "amount", AggType: Sum}},
	}

	cfg, err := def.AggConfig()
	require.NoError(t, err)
	assert.Equal(t, "region", cfg.Rows[0].ColumnName)
	assert.Len(t, cfg.Filters[0].Children(), 2)
	assert.Equal(t, def, DefinitionOf(cfg))

	_, err = Definition{Rows: []filter.Config{{Type: "AND"}}}.AggConfig()
	require.Error(t, err)
	_, err = Definition{Values: []ValueConfig{{AggType: Sum}}}.AggConfig()
	require.Error(t, err)
}
