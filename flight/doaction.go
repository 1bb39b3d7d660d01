package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/aggql"
	"github.com/hugr-lab/aggql/filter"
	"github.com/hugr-lab/aggql/internal/msgpack"
)

// Action types served by DoAction. Every action body is a MessagePack request.
const (
	// ActionCompileSQL returns the SELECT statement of a request.
	ActionCompileSQL = "compile_sql"
	// ActionCompileDSL returns the JSON bool query of a request.
	ActionCompileDSL = "compile_dsl"
	// ActionCompileSearch returns the JSON search body with aggregations.
	ActionCompileSearch = "compile_search"
	// ActionDimensionValues returns the member query of one column.
	// The body is a DimensionValuesRequest.
	ActionDimensionValues = "dimension_values"
)

var actionTypes = []*flight.ActionType{
	{Type: ActionCompileSQL, Description: "Compile a request to a SQL statement"},
	{Type: ActionCompileDSL, Description: "Compile request filters to a JSON bool query"},
	{Type: ActionCompileSearch, Description: "Compile a request to a JSON search body"},
	{Type: ActionDimensionValues, Description: "Compile a query listing the members of a column"},
}

// DimensionValuesRequest is the body of the dimension_values action.
type DimensionValuesRequest struct {
	Request aggql.Request `msgpack:"request"`
	Column  string        `msgpack:"column"`
}

// DoAction compiles a request without executing it.
func (s *Server) DoAction(action *flight.Action, stream flight.FlightService_DoActionServer) error {
	ctx := EnrichContext(stream.Context())

	s.logger.Debug("DoAction called",
		"request_id", RequestIDFromContext(ctx),
		"type", action.GetType(),
		"body_size", len(action.GetBody()),
	)

	actionType := action.GetType()

	var (
		body []byte
		err  error
	)
	switch actionType {
	case ActionCompileSQL:
		body, err = s.compileText(action, s.compiler.SQL)
	case ActionCompileDSL:
		body, err = s.compileDocument(action, s.compiler.DSL)
	case ActionCompileSearch:
		body, err = s.compileDocument(action, s.compiler.Search)
	case ActionDimensionValues:
		body, err = s.dimensionValues(action)
	default:
		return status.Errorf(codes.Unimplemented, "unknown action type: %s", actionType)
	}
	if err != nil {
		return err
	}

	return stream.Send(&flight.Result{Body: body})
}

// ListActions returns the action types served by DoAction.
func (s *Server) ListActions(_ *flight.Empty, stream flight.FlightService_ListActionsServer) error {
	for _, at := range actionTypes {
		if err := stream.Send(at); err != nil {
			return err
		}
	}
	return nil
}

func decodeRequest(action *flight.Action) (aggql.Request, error) {
	var req aggql.Request
	if err := msgpack.Decode(action.GetBody(), &req); err != nil {
		return req, status.Errorf(codes.InvalidArgument, "invalid %s body: %v", action.GetType(), err)
	}
	return req, nil
}

func (s *Server) compileText(action *flight.Action, compile func(aggql.Request) (string, error)) ([]byte, error) {
	req, err := decodeRequest(action)
	if err != nil {
		return nil, err
	}
	text, err := compile(req)
	if err != nil {
		return nil, toStatus(err, action.GetType()+" failed")
	}
	return []byte(text), nil
}

func (s *Server) compileDocument(action *flight.Action, compile func(aggql.Request) (filter.Document, error)) ([]byte, error) {
	req, err := decodeRequest(action)
	if err != nil {
		return nil, err
	}
	doc, err := compile(req)
	if err != nil {
		return nil, toStatus(err, action.GetType()+" failed")
	}
	data, err := doc.JSON()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode document: %v", err)
	}
	return data, nil
}

func (s *Server) dimensionValues(action *flight.Action) ([]byte, error) {
	var body DimensionValuesRequest
	if err := msgpack.Decode(action.GetBody(), &body); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s body: %v", action.GetType(), err)
	}
	if body.Column == "" {
		return nil, status.Error(codes.InvalidArgument, "column cannot be empty")
	}
	query, err := s.compiler.DimensionValues(body.Request, body.Column)
	if err != nil {
		return nil, toStatus(err, action.GetType()+" failed")
	}
	return []byte(query), nil
}
