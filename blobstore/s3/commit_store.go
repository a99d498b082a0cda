package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/seqgraph/blobstore"
)

// CurrentName is the base name of the pointer blobs a CommitStore keeps in
// DynamoDB instead of the wrapped store.
const CurrentName = "CURRENT"

// ErrConcurrentModification is returned when another writer committed the
// same version first.
var ErrConcurrentModification = errors.New("s3: concurrent modification detected")

// DDBClient is the subset of *dynamodb.Client used by CommitStore.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// CommitStore wraps a BlobStore and stores every ".../CURRENT" blob as a
// versioned item in DynamoDB. A commit is a conditional put of version n+1,
// so two writers racing on the same graph cannot both win.
//
// Table schema:
//   - Partition key: base_uri (string), the store URI plus the graph name
//   - Sort key: version (number)
//
//	aws dynamodb create-table \
//	  --table-name seqgraph-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type CommitStore struct {
	blobstore.BlobStore
	ddb     DDBClient
	table   string
	baseURI string
}

// NewCommitStore wraps store. baseURI identifies the store in the table,
// for example "s3://bucket/prefix".
func NewCommitStore(store blobstore.BlobStore, ddb DDBClient, table, baseURI string) *CommitStore {
	return &CommitStore{
		BlobStore: store,
		ddb:       ddb,
		table:     table,
		baseURI:   baseURI,
	}
}

// Commit is one committed pointer value.
type Commit struct {
	Version uint64
	Target  string
}

func isPointer(name string) bool {
	return path.Base(name) == CurrentName
}

func (s *CommitStore) partition(name string) string {
	return s.baseURI + "/" + name
}

// Open serves pointers from the latest committed version.
func (s *CommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if !isPointer(name) {
		return s.BlobStore.Open(ctx, name)
	}
	c, err := s.Latest(ctx, name)
	if err != nil {
		return nil, err
	}
	return blobstore.NewBytesBlob([]byte(c.Target)), nil
}

// Put commits pointers as a new version; other blobs go to the wrapped store.
func (s *CommitStore) Put(ctx context.Context, name string, data []byte) error {
	if !isPointer(name) {
		return s.BlobStore.Put(ctx, name, data)
	}
	_, err := s.commit(ctx, name, string(data))
	return err
}

// Delete removes every committed version of a pointer.
func (s *CommitStore) Delete(ctx context.Context, name string) error {
	if !isPointer(name) {
		return s.BlobStore.Delete(ctx, name)
	}
	history, err := s.History(ctx, name)
	if err != nil {
		return err
	}
	for _, c := range history {
		_, err := s.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.table),
			Key: map[string]types.AttributeValue{
				"base_uri": &types.AttributeValueMemberS{Value: s.partition(name)},
				"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(c.Version, 10)},
			},
		})
		if err != nil {
			return fmt.Errorf("s3: delete commit %d: %w", c.Version, err)
		}
	}
	return nil
}

// Latest returns the newest commit of a pointer, or blobstore.ErrNotFound.
func (s *CommitStore) Latest(ctx context.Context, name string) (Commit, error) {
	commits, err := s.query(ctx, name, 1)
	if err != nil {
		return Commit{}, err
	}
	if len(commits) == 0 {
		return Commit{}, blobstore.ErrNotFound
	}
	return commits[0], nil
}

// History returns all commits of a pointer, newest first.
func (s *CommitStore) History(ctx context.Context, name string) ([]Commit, error) {
	return s.query(ctx, name, 0)
}

func (s *CommitStore) query(ctx context.Context, name string, limit int32) ([]Commit, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.partition(name)},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	var commits []Commit
	for {
		resp, err := s.ddb.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("s3: query commits: %w", err)
		}
		for _, item := range resp.Items {
			c, err := decodeCommit(item)
			if err != nil {
				return nil, err
			}
			commits = append(commits, c)
		}
		if limit > 0 || len(resp.LastEvaluatedKey) == 0 {
			return commits, nil
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}
}

func decodeCommit(item map[string]types.AttributeValue) (Commit, error) {
	v, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Commit{}, errors.New("s3: commit item without numeric version")
	}
	target, ok := item["target"].(*types.AttributeValueMemberS)
	if !ok {
		return Commit{}, errors.New("s3: commit item without target")
	}
	version, err := strconv.ParseUint(v.Value, 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("s3: parse commit version: %w", err)
	}
	return Commit{Version: version, Target: target.Value}, nil
}

func (s *CommitStore) commit(ctx context.Context, name, target string) (Commit, error) {
	var next uint64 = 1
	latest, err := s.Latest(ctx, name)
	switch {
	case err == nil:
		next = latest.Version + 1
	case !errors.Is(err, blobstore.ErrNotFound):
		return Commit{}, err
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: s.partition(name)},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(next, 10)},
			"target":   &types.AttributeValueMemberS{Value: target},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return Commit{}, ErrConcurrentModification
		}
		return Commit{}, fmt.Errorf("s3: commit version %d: %w", next, err)
	}
	return Commit{Version: next, Target: target}, nil
}
