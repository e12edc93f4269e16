package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blood-donor-registry/services/registry-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	DonorsCollection   = "donors"
	HospitalCollection = "hospital"
)

type MongoStore struct {
	db        *mongo.Database
	donors    *mongo.Collection
	hospitals *mongo.Collection
	timeout   time.Duration
}

func NewMongoStore(db *mongo.Database, timeout time.Duration) *MongoStore {
	return &MongoStore{
		db:        db,
		donors:    db.Collection(DonorsCollection),
		hospitals: db.Collection(HospitalCollection),
		timeout:   timeout,
	}
}

// EnsureIndexes declares the unique indexes on every identifying field.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	unique := func(key, name string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(name),
		}
	}

	if _, err := s.donors.Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique("email", indexDonorEmail),
		unique("phone", indexDonorPhone),
		unique("aadhar", indexDonorAadhar),
	}); err != nil {
		return fmt.Errorf("failed to create donor indexes: %w", err)
	}

	if _, err := s.hospitals.Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique("email", indexHospitalEmail),
		unique("phone", indexHospitalPhone),
		unique("hospital_id", indexHospitalIDField),
	}); err != nil {
		return fmt.Errorf("failed to create hospital indexes: %w", err)
	}

	return nil
}

func (s *MongoStore) exists(ctx context.Context, coll *mongo.Collection, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	return n > 0, nil
}

func (s *MongoStore) DonorAadharExists(ctx context.Context, aadhar string) (bool, error) {
	return s.exists(ctx, s.donors, bson.M{"aadhar": aadhar})
}

func (s *MongoStore) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.existsInEither(ctx, bson.M{"email": email})
}

func (s *MongoStore) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return s.existsInEither(ctx, bson.M{"phone": phone})
}

func (s *MongoStore) existsInEither(ctx context.Context, filter bson.M) (bool, error) {
	found, err := s.exists(ctx, s.donors, filter)
	if err != nil || found {
		return found, err
	}
	return s.exists(ctx, s.hospitals, filter)
}

func (s *MongoStore) HospitalIDExists(ctx context.Context, hospitalID string) (bool, error) {
	return s.exists(ctx, s.hospitals, bson.M{"hospital_id": hospitalID})
}

func (s *MongoStore) InsertDonor(ctx context.Context, d *models.Donor) error {
	id, err := s.insert(ctx, s.donors, d)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (s *MongoStore) InsertHospital(ctx context.Context, h *models.Hospital) error {
	id, err := s.insert(ctx, s.hospitals, h)
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

func (s *MongoStore) insert(ctx context.Context, coll *mongo.Collection, doc interface{}) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", &DuplicateError{Field: fieldForIndex(err.Error()), Err: err}
		}
		return "", fmt.Errorf("failed to insert into %s: %w", coll.Name(), err)
	}

	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	default:
		return fmt.Sprint(id), nil
	}
}

func (s *MongoStore) FindDonorByEmail(ctx context.Context, email string) (*models.Donor, error) {
	var d models.Donor
	if err := s.findOne(ctx, s.donors, bson.M{"email": email}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MongoStore) FindHospitalByHospitalID(ctx context.Context, hospitalID string) (*models.Hospital, error) {
	var h models.Hospital
	if err := s.findOne(ctx, s.hospitals, bson.M{"hospital_id": hospitalID}, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *MongoStore) findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch from %s: %w", coll.Name(), err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}
