package handler

import (
	"time"

	"github.com/Netflix/go-env"
)

const defaultFunctionName = "lakefront"

// EnvVars has all environment variables that should be given to Lambda function
type EnvVars struct {
	LogLevel  string `env:"LOG_LEVEL"`
	SentryDSN string `env:"SENTRY_DSN"`
	SentryEnv string `env:"SENTRY_ENVIRONMENT"`

	// From resource
	JSONBucketName  string `env:"JSON_BUCKET_NAME"`
	RawBucketName   string `env:"RAW_BUCKET_NAME"`
	IngestQueueURL  string `env:"INGEST_QUEUE_URL"`
	RedriveQueueURL string `env:"REDRIVE_QUEUE_URL"`
	MetaTableName   string `env:"META_TABLE_NAME"`

	ColumnSeparator string `env:"DATAFRAME_COLUMN_SEPARATOR,default=__"`

	AthenaDatabase       string `env:"ATHENA_DATABASE"`
	AthenaWorkgroup      string `env:"ATHENA_WORKGROUP"`
	AthenaOutputLocation string `env:"ATHENA_OUTPUT_LOCATION"`
	AthenaQueryTimeout   int    `env:"ATHENA_QUERY_TIMEOUT_SECONDS,default=60"`

	EventBus        string `env:"EVENTBRIDGE_EVENT_BUS,default=default"`
	EventSource     string `env:"EVENTBRIDGE_SOURCE"`
	EventDetailType string `env:"EVENTBRIDGE_DETAIL_TYPE,default=event"`

	MetricsNamespace string `env:"CLOUDWATCH_METRICS_NAMESPACE,default=Application"`

	QueueURLCacheSize int           `env:"QUEUE_URL_CACHE_SIZE,default=128"`
	QueueURLCacheTTL  time.Duration `env:"QUEUE_URL_CACHE_TTL,default=1h"`

	// FailedRecordVisibilityTimeout (seconds) enables backoff of failed records when positive
	FailedRecordVisibilityTimeout int `env:"FAILED_RECORD_VISIBILITY_TIMEOUT,default=0"`

	FunctionName string `env:"FUNCTION_NAME"`

	// From AWS Lambda
	AwsRegion          string `env:"AWS_REGION"`
	LambdaFunctionName string `env:"AWS_LAMBDA_FUNCTION_NAME"`
}

// BindEnvVars loads environments variables and set them to EnvVars
func (x *EnvVars) BindEnvVars() error {
	if _, err := env.UnmarshalFromEnviron(x); err != nil {
		Logger.WithError(err).Error("Failed UnmarshalFromEviron")
		return err
	}

	return nil
}

// Function returns name of running function for logging, events and metrics
func (x *EnvVars) Function() string {
	switch {
	case x.FunctionName != "":
		return x.FunctionName
	case x.LambdaFunctionName != "":
		return x.LambdaFunctionName
	default:
		return defaultFunctionName
	}
}

func (x *EnvVars) eventSource() string {
	if x.EventSource != "" {
		return x.EventSource
	}
	return x.Function()
}

func (x *EnvVars) athenaTimeout() time.Duration {
	return time.Duration(x.AthenaQueryTimeout) * time.Second
}
