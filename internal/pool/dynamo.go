package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"syncserver/internal/apierror"
)

const defaultDynamoMaxSize = 10

var ErrPoolClosed = errors.New("pool closed")

// DynamoAPI is the subset of the DynamoDB client sessions use.
type DynamoAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Dynamo is a session-oriented Pool. DynamoDB has no connections of its own,
// so the pool hands out sessions bound to one table and bounds how many are
// checked out at once.
type Dynamo struct {
	*dynamoSessions
}

type dynamoSessions struct {
	client DynamoAPI
	table  string
	exec   *Executor
	cfg    Config

	slots chan struct{}

	mu     sync.Mutex
	idle   []*DynamoSession
	total  uint32
	closed bool
}

type DynamoOptions struct {
	Table    string
	Region   string
	Endpoint string
}

func NewDynamo(ctx context.Context, opts DynamoOptions, cfg Config, exec *Executor) (*Dynamo, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load aws config")
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return NewDynamoWithClient(client, opts.Table, cfg, exec), nil
}

func NewDynamoWithClient(client DynamoAPI, table string, cfg Config, exec *Executor) *Dynamo {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = defaultDynamoMaxSize
	}
	return &Dynamo{&dynamoSessions{
		client: client,
		table:  table,
		exec:   exec,
		cfg:    cfg,
		slots:  make(chan struct{}, cfg.MaxSize),
	}}
}

func (p *Dynamo) Acquire(ctx context.Context) (Conn, error) {
	ctx, cancel := withAcquireTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()

	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, acquireError(ctx.Err(), uint32(len(p.slots)), p.cfg.MaxSize, "dynamodb")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		<-p.slots
		return nil, apierror.Database(ErrPoolClosed)
	}
	if n := len(p.idle); n > 0 {
		s := p.idle[n-1]
		p.idle = p.idle[:n-1]
		return s, nil
	}
	p.total++
	return &DynamoSession{
		ID:        uuid.NewString(),
		Table:     p.table,
		Client:    p.client,
		CreatedAt: time.Now(),
		pool:      p.dynamoSessions,
	}, nil
}

func (p *Dynamo) RunBlocking(ctx context.Context, fn func(ctx context.Context, conn Conn) error) error {
	return runWithConn(ctx, p, p.exec, fn)
}

func (p *Dynamo) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		ActiveConnections: p.total,
		IdleConnections:   uint32(len(p.idle)),
	}
}

func (p *Dynamo) MaxSize() uint32 {
	return p.cfg.MaxSize
}

func (p *Dynamo) Clone() Pool {
	return &Dynamo{p.dynamoSessions}
}

func (p *Dynamo) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.total -= uint32(len(p.idle))
	p.idle = nil
}

func (p *dynamoSessions) release(s *DynamoSession) {
	p.mu.Lock()
	if p.closed {
		p.total--
	} else {
		p.idle = append(p.idle, s)
	}
	p.mu.Unlock()
	<-p.slots
}

// DynamoSession is a checked-out handle on the table.
type DynamoSession struct {
	ID        string
	Table     string
	Client    DynamoAPI
	CreatedAt time.Time

	pool *dynamoSessions
}

func (s *DynamoSession) Ping(ctx context.Context) error {
	_, err := s.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.Table)})
	if err != nil {
		return apierror.Database(pkgerrors.Wrapf(err, "describe table %s", s.Table))
	}
	return nil
}

func (s *DynamoSession) Release() {
	s.pool.release(s)
}
