package flight_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/aggql"
	"github.com/hugr-lab/aggql/agg"
	"github.com/hugr-lab/aggql/auth"
	"github.com/hugr-lab/aggql/filter"
	"github.com/hugr-lab/aggql/internal/msgpack"
	"github.com/hugr-lab/aggql/result"

	aggflight "github.com/hugr-lab/aggql/flight"
)

type stubExecutor struct {
	rows  *result.Rows
	panic bool
}

func (s *stubExecutor) Execute(context.Context, string) (*result.Rows, error) {
	if s.panic {
		panic("driver crashed")
	}
	return s.rows, nil
}

func str(s string) *string { return &s }

func salesRequest() aggql.Request {
	return aggql.Request{
		Table: "sales",
		Definition: agg.Definition{
			Rows:   []filter.Config{{ColumnName: "region", FilterType: "=", Values: []string{"EU", filter.NullSentinel}}},
			Values: []agg.ValueConfig{{Column: "amount", AggType: agg.Sum}},
		},
		Catalog: map[string]string{"region": "VARCHAR", "amount": "DECIMAL"},
	}
}

func startServer(t *testing.T, exec aggql.Executor) flight.FlightServiceClient {
	t.Helper()
	return startServerWith(t, aggflight.ServerConfig{Executor: exec})
}

func startServerWith(t *testing.T, cfg aggflight.ServerConfig) flight.FlightServiceClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	compiler, err := aggql.New(aggql.Config{Logger: logger})
	require.NoError(t, err)

	cfg.Compiler = compiler
	cfg.Allocator = memory.NewGoAllocator()
	srv, err := aggflight.NewServer(cfg)
	require.NoError(t, err)

	grpcServer := aggflight.NewGRPCServer(srv)
	lis, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return flight.NewFlightServiceClient(conn)
}

func doAction(t *testing.T, client flight.FlightServiceClient, actionType string, body any) ([]byte, error) {
	t.Helper()
	data, err := msgpack.Encode(body)
	require.NoError(t, err)
	stream, err := client.DoAction(context.Background(), &flight.Action{Type: actionType, Body: data})
	require.NoError(t, err)
	res, err := stream.Recv()
	if err != nil {
		return nil, err
	}
	return res.GetBody(), nil
}

func TestNewServer(t *testing.T) {
	_, err := aggflight.NewServer(aggflight.ServerConfig{})
	require.ErrorIs(t, err, aggflight.ErrNoCompiler)
}

func TestDoGet(t *testing.T) {
	exec := &stubExecutor{rows: &result.Rows{
		Columns: []string{"region", "sum"},
		Values: [][]*string{
			{str("EU"), str("10.50")},
			{nil, str("3.00")},
		},
	}}
	client := startServer(t, exec)

	ticket, err := aggflight.EncodeTicket(salesRequest())
	require.NoError(t, err)

	stream, err := client.DoGet(context.Background(), &flight.Ticket{Ticket: ticket})
	require.NoError(t, err)

	reader, err := flight.NewRecordReader(stream)
	require.NoError(t, err)
	defer reader.Release()

	require.True(t, reader.Next())
	rec := reader.Record()
	require.EqualValues(t, 2, rec.NumRows())
	require.EqualValues(t, 2, rec.NumCols())
	assert.Equal(t, "region", rec.Schema().Field(0).Name)

	regions := rec.Column(0).(*array.String)
	assert.Equal(t, "EU", regions.Value(0))
	assert.True(t, regions.IsNull(1))
	sums := rec.Column(1).(*array.String)
	assert.Equal(t, "3.00", sums.Value(1))

	assert.False(t, reader.Next())
}

func TestDoGet_Errors(t *testing.T) {
	t.Run("invalid ticket", func(t *testing.T) {
		client := startServer(t, &stubExecutor{})
		stream, err := client.DoGet(context.Background(), &flight.Ticket{Ticket: []byte("garbage")})
		require.NoError(t, err)
		_, err = stream.Recv()
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("compile error", func(t *testing.T) {
		client := startServer(t, &stubExecutor{})
		req := salesRequest()
		req.Catalog = map[string]string{"amount": "DECIMAL"}
		ticket, err := aggflight.EncodeTicket(req)
		require.NoError(t, err)
		stream, err := client.DoGet(context.Background(), &flight.Ticket{Ticket: ticket})
		require.NoError(t, err)
		_, err = stream.Recv()
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("executor panic", func(t *testing.T) {
		client := startServer(t, &stubExecutor{panic: true})
		ticket, err := aggflight.EncodeTicket(salesRequest())
		require.NoError(t, err)
		stream, err := client.DoGet(context.Background(), &flight.Ticket{Ticket: ticket})
		require.NoError(t, err)
		_, err = stream.Recv()
		assert.Equal(t, codes.Internal, status.Code(err))
	})

	t.Run("no executor", func(t *testing.T) {
		client := startServer(t, nil)
		ticket, err := aggflight.EncodeTicket(salesRequest())
		require.NoError(t, err)
		stream, err := client.DoGet(context.Background(), &flight.Ticket{Ticket: ticket})
		require.NoError(t, err)
		_, err = stream.Recv()
		assert.Equal(t, codes.Unimplemented, status.Code(err))
	})
}

func TestDoAction(t *testing.T) {
	client := startServer(t, nil)

	body, err := doAction(t, client, aggflight.ActionCompileSQL, salesRequest())
	require.NoError(t, err)
	assert.Equal(t, "SELECT region, SUM(amount) FROM sales WHERE (region IN ('EU') OR region IS NULL) GROUP BY region", string(body))

	body, err = doAction(t, client, aggflight.ActionCompileDSL, salesRequest())
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Contains(t, doc, "bool")

	body, err = doAction(t, client, aggflight.ActionCompileSearch, salesRequest())
	require.NoError(t, err)
	doc = nil
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Contains(t, doc, "aggs")
	assert.EqualValues(t, 0, doc["size"])

	body, err = doAction(t, client, aggflight.ActionDimensionValues, aggflight.DimensionValuesRequest{
		Request: salesRequest(),
		Column:  "region",
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT region FROM sales GROUP BY region", string(body))
}

func TestDoAction_Errors(t *testing.T) {
	client := startServer(t, nil)

	_, err := doAction(t, client, "drop_table", salesRequest())
	assert.Equal(t, codes.Unimplemented, status.Code(err))

	req := salesRequest()
	req.Definition.Values = nil
	req.Definition.Rows = nil
	_, err = doAction(t, client, aggflight.ActionCompileSQL, req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = doAction(t, client, aggflight.ActionDimensionValues, aggflight.DimensionValuesRequest{Request: salesRequest()})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestListActions(t *testing.T) {
	client := startServer(t, nil)
	stream, err := client.ListActions(context.Background(), &flight.Empty{})
	require.NoError(t, err)

	var types []string
	for {
		at, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		types = append(types, at.GetType())
	}
	assert.ElementsMatch(t, []string{
		aggflight.ActionCompileSQL,
		aggflight.ActionCompileDSL,
		aggflight.ActionCompileSearch,
		aggflight.ActionDimensionValues,
	}, types)
}

func TestGetFlightInfo(t *testing.T) {
	client := startServer(t, nil)

	cmd, err := json.Marshal(salesRequest())
	require.NoError(t, err)
	info, err := client.GetFlightInfo(context.Background(), &flight.FlightDescriptor{
		Type: flight.DescriptorCMD,
		Cmd:  cmd,
	})
	require.NoError(t, err)

	schema, err := flight.DeserializeSchema(info.GetSchema(), memory.DefaultAllocator)
	require.NoError(t, err)
	require.Equal(t, 2, schema.NumFields())
	assert.Equal(t, "region", schema.Field(0).Name)

	require.Len(t, info.GetEndpoint(), 1)
	req, err := aggflight.DecodeTicket(info.GetEndpoint()[0].GetTicket().GetTicket())
	require.NoError(t, err)
	assert.Equal(t, "sales", req.Table)

	_, err = client.GetFlightInfo(context.Background(), &flight.FlightDescriptor{
		Type: flight.DescriptorPATH,
		Path: []string{"sales"},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAuthentication(t *testing.T) {
	client := startServerWith(t, aggflight.ServerConfig{Authenticator: auth.StaticTokens("secret")})

	stream, err := client.ListActions(context.Background(), &flight.Empty{})
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(context.Background(), aggflight.HeaderAuthorization, "Bearer wrong")
	_, err = client.GetFlightInfo(ctx, &flight.FlightDescriptor{Type: flight.DescriptorCMD, Cmd: []byte("{}")})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx = metadata.AppendToOutgoingContext(context.Background(),
		aggflight.HeaderAuthorization, "Bearer secret",
		aggflight.HeaderRequestID, "req-1",
	)
	stream, err = client.ListActions(ctx, &flight.Empty{})
	require.NoError(t, err)
	at, err := stream.Recv()
	require.NoError(t, err)
	assert.NotEmpty(t, at.GetType())
}
