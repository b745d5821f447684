package handler

import (
	"github.com/goccy/go-json"
	"github.com/m-mizutani/lakefront/internal/adaptor"
	"github.com/m-mizutani/lakefront/internal/repository"
	"github.com/m-mizutani/lakefront/internal/service"
	"github.com/m-mizutani/lakefront/pkg/emitter"
	"github.com/pkg/errors"
)

// Arguments has environment variables, Event and adaptors
type Arguments struct {
	EnvVars
	Event json.RawMessage

	NewS3          adaptor.S3ClientFactory          `json:"-"`
	NewSQS         adaptor.SQSClientFactory         `json:"-"`
	NewAthena      adaptor.AthenaClientFactory      `json:"-"`
	NewEventBridge adaptor.EventBridgeClientFactory `json:"-"`
	NewCloudWatch  adaptor.CloudWatchClientFactory  `json:"-"`
	NewLambda      adaptor.LambdaClientFactory      `json:"-"`

	MetaRepo repository.MetaRepository `json:"-"`
	URLCache service.QueueURLCache     `json:"-"`

	meta *service.MetaService
}

// BindEvent directly unmarshals event data to ev object.
func (x *Arguments) BindEvent(ev interface{}) error {
	if err := json.Unmarshal(x.Event, ev); err != nil {
		Logger.WithField("raw", string(x.Event)).Error("json.Unmarshal")
		return errors.Wrap(err, "Failed json.Unmarshal in BindEvent")
	}

	return nil
}

// ObjectService provides service.ObjectService with S3 adaptor
func (x *Arguments) ObjectService() *service.ObjectService {
	return service.NewObjectService(x.newS3())
}

// QueueService provides service.QueueService with SQS adaptor and URL cache
func (x *Arguments) QueueService() *service.QueueService {
	if x.URLCache == nil {
		x.URLCache = service.NewQueueURLCache(x.QueueURLCacheSize, x.QueueURLCacheTTL)
	}
	return service.NewQueueService(x.newSQS(), x.URLCache, x.AwsRegion)
}

// AthenaService provides service.AthenaService in configured workgroup
func (x *Arguments) AthenaService() *service.AthenaService {
	svc := service.NewAthenaService(x.newAthena(), x.AwsRegion, x.AthenaWorkgroup, x.AthenaOutputLocation)
	svc.SetWait(0, x.athenaTimeout())
	return svc
}

// EventService provides service.EventService with EventBridge adaptor
func (x *Arguments) EventService() *service.EventService {
	return service.NewEventService(x.newEventBridge(), x.AwsRegion)
}

// MetricService provides service.MetricService with CloudWatch adaptor
func (x *Arguments) MetricService() *service.MetricService {
	return service.NewMetricService(x.newCloudWatch(), x.AwsRegion, x.MetricsNamespace, x.Function())
}

// LayerService provides service.LayerService with Lambda adaptor
func (x *Arguments) LayerService() *service.LayerService {
	return service.NewLayerService(x.newLambda(), x.AwsRegion)
}

// MetaService provides MetaService. DynamoDB is used only if META_TABLE_NAME
// is set or MetaRepo is given.
func (x *Arguments) MetaService() *service.MetaService {
	if x.meta != nil {
		return x.meta
	}

	repo := x.MetaRepo
	if repo == nil && x.MetaTableName != "" {
		repo = repository.NewMetaDynamoDB(x.AwsRegion, x.MetaTableName)
	}

	x.meta = service.NewMetaService(repo)
	return x.meta
}

// EventEmitter returns options of emitter.FromResult by environment variables
func (x *Arguments) EventEmitter() emitter.Options {
	return emitter.Options{
		Bus:         x.EventBus,
		Source:      x.eventSource(),
		DetailType:  x.EventDetailType,
		IgnoreFails: true,
	}
}

func (x *Arguments) newS3() adaptor.S3ClientFactory {
	if x.NewS3 != nil {
		return x.NewS3
	}
	return adaptor.NewS3Client
}

func (x *Arguments) newSQS() adaptor.SQSClientFactory {
	if x.NewSQS != nil {
		return x.NewSQS
	}
	return adaptor.NewSQSClient
}

func (x *Arguments) newAthena() adaptor.AthenaClientFactory {
	if x.NewAthena != nil {
		return x.NewAthena
	}
	return adaptor.NewAthenaClient
}

func (x *Arguments) newEventBridge() adaptor.EventBridgeClientFactory {
	if x.NewEventBridge != nil {
		return x.NewEventBridge
	}
	return adaptor.NewEventBridgeClient
}

func (x *Arguments) newCloudWatch() adaptor.CloudWatchClientFactory {
	if x.NewCloudWatch != nil {
		return x.NewCloudWatch
	}
	return adaptor.NewCloudWatchClient
}

func (x *Arguments) newLambda() adaptor.LambdaClientFactory {
	if x.NewLambda != nil {
		return x.NewLambda
	}
	return adaptor.NewLambdaClient
}
