package service

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/athena"
	"github.com/m-mizutani/lakefront/internal/adaptor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAthenaQueryTimeout = 60 * time.Second
	defaultAthenaPollInterval = time.Second
)

var (
	// ErrQueryTimeout is returned when query does not finish in timeout. The query is cancelled.
	ErrQueryTimeout = errors.New("Athena query timeout")
	// ErrQueryFailed is returned when query state is FAILED or CANCELLED
	ErrQueryFailed = errors.New("Athena query failed")
)

// AthenaService runs Athena queries in a workgroup
type AthenaService struct {
	newAthena      adaptor.AthenaClientFactory
	region         string
	workgroup      string
	outputLocation string
	timeout        time.Duration
	pollInterval   time.Duration
}

// NewAthenaService is constructor of AthenaService. Empty workgroup and
// outputLocation are not set to query.
func NewAthenaService(newAthena adaptor.AthenaClientFactory, region, workgroup, outputLocation string) *AthenaService {
	return &AthenaService{
		newAthena:      newAthena,
		region:         region,
		workgroup:      workgroup,
		outputLocation: outputLocation,
		timeout:        DefaultAthenaQueryTimeout,
		pollInterval:   defaultAthenaPollInterval,
	}
}

// SetWait changes polling interval and timeout of WaitForResult. Zero keeps current value.
func (x *AthenaService) SetWait(interval, timeout time.Duration) {
	if interval > 0 {
		x.pollInterval = interval
	}
	if timeout > 0 {
		x.timeout = timeout
	}
}

// Execute starts a query and returns AthenaQuery to track it
func (x *AthenaService) Execute(ctx context.Context, query string) (*AthenaQuery, error) {
	client := x.newAthena(x.region)
	input := &athena.StartQueryExecutionInput{
		QueryString: aws.String(query),
	}
	if x.workgroup != "" {
		input.WorkGroup = aws.String(x.workgroup)
	}
	if x.outputLocation != "" {
		input.ResultConfiguration = &athena.ResultConfiguration{
			OutputLocation: aws.String(x.outputLocation),
		}
	}

	output, err := client.StartQueryExecutionWithContext(ctx, input)
	if err != nil {
		return nil, errors.Wrapf(err, "Fail to start query execution: %s", query)
	}

	logger.WithFields(logrus.Fields{
		"query_id": aws.StringValue(output.QueryExecutionId),
		"query":    query,
	}).Debug("Started Athena query")

	return &AthenaQuery{
		ID:     aws.StringValue(output.QueryExecutionId),
		client: client,
		svc:    x,
	}, nil
}

// AthenaQuery is a started query
type AthenaQuery struct {
	ID     string
	client adaptor.AthenaClient
	svc    *AthenaService
}

// QueryStatus is summary of athena.QueryExecution
type QueryStatus struct {
	State           string
	Reason          string
	ScannedBytes    int64
	ExecutionMillis int64
}

func (x *QueryStatus) finished() bool {
	switch x.State {
	case athena.QueryExecutionStateSucceeded, athena.QueryExecutionStateFailed, athena.QueryExecutionStateCancelled:
		return true
	}
	return false
}

// Status returns current status of the query
func (x *AthenaQuery) Status(ctx context.Context) (*QueryStatus, error) {
	output, err := x.client.GetQueryExecutionWithContext(ctx, &athena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(x.ID),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Fail to get query execution: %s", x.ID)
	}

	var status QueryStatus
	if exec := output.QueryExecution; exec != nil {
		if exec.Status != nil {
			status.State = aws.StringValue(exec.Status.State)
			status.Reason = aws.StringValue(exec.Status.StateChangeReason)
		}
		if exec.Statistics != nil {
			status.ScannedBytes = aws.Int64Value(exec.Statistics.DataScannedInBytes)
			status.ExecutionMillis = aws.Int64Value(exec.Statistics.EngineExecutionTimeInMillis)
		}
	} else {
		logger.WithField("output", output).Error("No output from athena.GetQueryExecution")
	}

	return &status, nil
}

// Result retrieves all pages of the query result. Only the first page has the header row.
func (x *AthenaQuery) Result(ctx context.Context) (*athena.ResultSet, error) {
	result := &athena.ResultSet{}
	var token *string

	for {
		output, err := x.client.GetQueryResultsWithContext(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: aws.String(x.ID),
			NextToken:        token,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "Fail to get query results: %s", x.ID)
		}

		if rs := output.ResultSet; rs != nil {
			if result.ResultSetMetadata == nil {
				result.ResultSetMetadata = rs.ResultSetMetadata
			}
			result.Rows = append(result.Rows, rs.Rows...)
		}

		if output.NextToken == nil {
			break
		}
		token = output.NextToken
	}

	return result, nil
}

// WaitForResult polls status until the query finishes and returns the
// result. The query is cancelled when it does not finish in timeout.
func (x *AthenaQuery) WaitForResult(ctx context.Context) (*athena.ResultSet, error) {
	log := logger.WithField("query_id", x.ID)

	for elapsed := time.Duration(0); elapsed <= x.svc.timeout; elapsed += x.svc.pollInterval {
		status, err := x.Status(ctx)
		if err != nil {
			return nil, err
		}

		switch status.State {
		case athena.QueryExecutionStateSucceeded:
			log.WithFields(logrus.Fields{
				"bytes_scanned":        status.ScannedBytes,
				"execution_time_in_ms": status.ExecutionMillis,
			}).Info("Athena query succeeded")
			return x.Result(ctx)

		case athena.QueryExecutionStateFailed, athena.QueryExecutionStateCancelled:
			log.WithFields(logrus.Fields{
				"state":  status.State,
				"reason": status.Reason,
			}).Info("Athena query failed")
			return nil, errors.Wrapf(ErrQueryFailed, "%s: %s", status.State, status.Reason)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(x.svc.pollInterval):
		}
	}

	if !x.Cancel(ctx) {
		return nil, errors.Errorf("Caught timeout but failed to stop query: %s", x.ID)
	}

	return nil, errors.Wrapf(ErrQueryTimeout, "query_id: %s", x.ID)
}

// Cancel stops the query if it is still running. It returns false when status
// or stop request fails, and the query may still be running.
func (x *AthenaQuery) Cancel(ctx context.Context) bool {
	log := logger.WithField("query_id", x.ID)

	status, err := x.Status(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to cancel Athena query")
		return false
	}
	if status.finished() {
		return true
	}

	log.WithField("state", status.State).Debug("Athena query is running, attempting to cancel")
	if _, err := x.client.StopQueryExecutionWithContext(ctx, &athena.StopQueryExecutionInput{
		QueryExecutionId: aws.String(x.ID),
	}); err != nil {
		log.WithError(err).Error("Failed to cancel Athena query")
		return false
	}

	log.Debug("Cancelled Athena query")
	return true
}

// RowsToMaps converts rows to maps keyed by the header (first row). Missing
// cells are empty strings.
func RowsToMaps(rs *athena.ResultSet) []map[string]string {
	rows := []map[string]string{}
	if rs == nil || len(rs.Rows) < 1 {
		return rows
	}

	var header []string
	for _, d := range rs.Rows[0].Data {
		header = append(header, aws.StringValue(d.VarCharValue))
	}

	for _, row := range rs.Rows[1:] {
		m := make(map[string]string, len(header))
		for i, d := range row.Data {
			if i < len(header) {
				m[header[i]] = aws.StringValue(d.VarCharValue)
			}
		}
		rows = append(rows, m)
	}

	return rows
}
