package adaptor

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
)

var (
	sessionCache      = map[string]*session.Session{}
	sessionCacheMutex sync.Mutex
)

// newSession returns a session shared per region.
func newSession(region string) *session.Session {
	sessionCacheMutex.Lock()
	defer sessionCacheMutex.Unlock()

	if ssn, ok := sessionCache[region]; ok {
		return ssn
	}

	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	ssn := session.Must(session.NewSession(cfg))
	sessionCache[region] = ssn
	return ssn
}
