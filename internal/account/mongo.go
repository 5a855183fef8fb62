package account

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	verrors "mangavault/pkg/errors"
)

// mongoDoc is the BSON shape stored in mongo; Account itself has no bson
// tags since the wire/file backends don't need them.
type mongoDoc struct {
	ID          string    `bson:"_id"`
	Vendor      string    `bson:"vendor"`
	DeviceTag   string    `bson:"device_tag"`
	Email       string    `bson:"email"`
	CreatedAt   time.Time `bson:"created_at"`
	TokenExpiry time.Time `bson:"token_expiry"`
	Payload     []byte    `bson:"payload"`
}

func toDoc(acc Account) mongoDoc {
	return mongoDoc{
		ID:          acc.ID,
		Vendor:      acc.Vendor,
		DeviceTag:   acc.DeviceTag,
		Email:       acc.Email,
		CreatedAt:   acc.CreatedAt,
		TokenExpiry: acc.TokenExpiry,
		Payload:     acc.Payload,
	}
}

func fromDoc(d mongoDoc) Account {
	return Account{
		ID:          d.ID,
		Vendor:      d.Vendor,
		DeviceTag:   d.DeviceTag,
		Email:       d.Email,
		CreatedAt:   d.CreatedAt,
		TokenExpiry: d.TokenExpiry,
		Payload:     d.Payload,
	}
}

// MongoStore is the alternate credential-store backend for multi-host
// deployments, sharing the same Store interface as FileStore/MemoryStore.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{coll: client.Database(database).Collection(collection)}
}

func (s *MongoStore) List(ctx context.Context, vendor string) ([]Account, error) {
	cur, err := s.coll.Find(ctx, bson.M{"vendor": vendor})
	if err != nil {
		return nil, verrors.ErrInternal.Wrap(err)
	}
	defer cur.Close(ctx)

	out := make([]Account, 0)
	for cur.Next(ctx) {
		var d mongoDoc
		if err := cur.Decode(&d); err != nil {
			return nil, verrors.ErrAccountCorrupt.Wrap(err)
		}
		out = append(out, fromDoc(d))
	}
	return out, cur.Err()
}

func (s *MongoStore) Get(ctx context.Context, id string) (Account, error) {
	var d mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return Account{}, verrors.ErrAccountNotFound
	}
	if err != nil {
		return Account{}, verrors.ErrInternal.Wrap(err)
	}
	return fromDoc(d), nil
}

func (s *MongoStore) FindByEmail(ctx context.Context, vendor, email string) (*Account, error) {
	var d mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"vendor": vendor, "email": email}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, verrors.ErrInternal.Wrap(err)
	}
	acc := fromDoc(d)
	return &acc, nil
}

func (s *MongoStore) Save(ctx context.Context, acc Account) (Account, error) {
	existing, err := s.FindByEmail(ctx, acc.Vendor, acc.Email)
	if err != nil {
		return Account{}, err
	}

	acc = PrepareForSave(acc, existing)

	doc := toDoc(acc)
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": acc.ID}, doc, opts); err != nil {
		return Account{}, verrors.ErrInternal.Wrap(err)
	}

	return acc, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return verrors.ErrInternal.Wrap(err)
	}
	if res.DeletedCount == 0 {
		return verrors.ErrAccountNotFound
	}
	return nil
}
