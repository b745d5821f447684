package mock

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/athena"
	"github.com/m-mizutani/lakefront/internal/adaptor"
)

// AthenaClient is mock of AWS Athena SDK. GetQueryExecution returns States in
// order and keeps returning the last one.
type AthenaClient struct {
	mutex sync.Mutex

	States      []string
	StateReason string
	Pages       []*athena.ResultSet

	StartInput []*athena.StartQueryExecutionInput
	StopInput  []*athena.StopQueryExecutionInput
	polled     map[string]int
}

// NewAthenaClient creates mock that finishes query immediately
func NewAthenaClient() *AthenaClient {
	return &AthenaClient{
		States: []string{athena.QueryExecutionStateSucceeded},
		polled: make(map[string]int),
	}
}

// Factory returns AthenaClientFactory that always provides the mock itself
func (x *AthenaClient) Factory() adaptor.AthenaClientFactory {
	return func(region string) adaptor.AthenaClient { return x }
}

// Queries returns executed query strings
func (x *AthenaClient) Queries() []string {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	var queries []string
	for _, input := range x.StartInput {
		queries = append(queries, aws.StringValue(input.QueryString))
	}
	return queries
}

func (x *AthenaClient) StartQueryExecutionWithContext(ctx aws.Context, input *athena.StartQueryExecutionInput, opts ...request.Option) (*athena.StartQueryExecutionOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	x.StartInput = append(x.StartInput, input)
	return &athena.StartQueryExecutionOutput{
		QueryExecutionId: aws.String(fmt.Sprintf("query-%d", len(x.StartInput))),
	}, nil
}

func (x *AthenaClient) GetQueryExecutionWithContext(ctx aws.Context, input *athena.GetQueryExecutionInput, opts ...request.Option) (*athena.GetQueryExecutionOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	id := aws.StringValue(input.QueryExecutionId)
	idx := x.polled[id]
	if idx >= len(x.States) {
		idx = len(x.States) - 1
	}
	x.polled[id]++

	return &athena.GetQueryExecutionOutput{
		QueryExecution: &athena.QueryExecution{
			QueryExecutionId: input.QueryExecutionId,
			Status: &athena.QueryExecutionStatus{
				State:             aws.String(x.States[idx]),
				StateChangeReason: aws.String(x.StateReason),
			},
		},
	}, nil
}

func (x *AthenaClient) GetQueryResultsWithContext(ctx aws.Context, input *athena.GetQueryResultsInput, opts ...request.Option) (*athena.GetQueryResultsOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	page := 0
	if input.NextToken != nil {
		n, err := strconv.Atoi(*input.NextToken)
		if err != nil {
			return nil, fmt.Errorf("invalid NextToken: %s", *input.NextToken)
		}
		page = n
	}

	if page >= len(x.Pages) {
		return &athena.GetQueryResultsOutput{ResultSet: &athena.ResultSet{}}, nil
	}

	output := &athena.GetQueryResultsOutput{ResultSet: x.Pages[page]}
	if page+1 < len(x.Pages) {
		output.NextToken = aws.String(strconv.Itoa(page + 1))
	}
	return output, nil
}

func (x *AthenaClient) StopQueryExecutionWithContext(ctx aws.Context, input *athena.StopQueryExecutionInput, opts ...request.Option) (*athena.StopQueryExecutionOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	x.StopInput = append(x.StopInput, input)
	return &athena.StopQueryExecutionOutput{}, nil
}

// NewResultSet builds athena.ResultSet. When header is not nil, it is set as
// the first row like Athena does on the first page.
func NewResultSet(header []string, rows ...[]string) *athena.ResultSet {
	toRow := func(values []string) *athena.Row {
		row := &athena.Row{}
		for i := range values {
			row.Data = append(row.Data, &athena.Datum{VarCharValue: aws.String(values[i])})
		}
		return row
	}

	rs := &athena.ResultSet{}
	if header != nil {
		rs.Rows = append(rs.Rows, toRow(header))
		rs.ResultSetMetadata = &athena.ResultSetMetadata{}
		for _, h := range header {
			rs.ResultSetMetadata.ColumnInfo = append(rs.ResultSetMetadata.ColumnInfo, &athena.ColumnInfo{
				Name: aws.String(h),
				Type: aws.String("varchar"),
			})
		}
	}
	for _, r := range rows {
		rs.Rows = append(rs.Rows, toRow(r))
	}
	return rs
}
