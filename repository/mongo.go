package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/hpmalinova/Expense-Tracker/contract"
	"github.com/hpmalinova/Expense-Tracker/model"
	"github.com/hpmalinova/Expense-Tracker/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"
)

const (
	usersCollection        = "users"
	transactionsCollection = "transactions"
)

// MongoStore keeps users and transactions as documents. It is the default backend.
type MongoStore struct {
	client       *mongo.Client
	users        *UserRepoMongo
	transactions *TransactionRepoMongo
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	store := &MongoStore{
		client:       client,
		users:        &UserRepoMongo{coll: db.Collection(usersCollection)},
		transactions: &TransactionRepoMongo{coll: db.Collection(transactionsCollection)},
	}
	if err := store.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}

	_, err = s.transactions.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "date", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create transactions user/date index: %w", err)
	}
	return nil
}

func (s *MongoStore) Users() contract.UserRepo { return s.users }

func (s *MongoStore) Transactions() contract.TransactionRepo { return s.transactions }

func (s *MongoStore) Ping(ctx context.Context) error { return s.client.Ping(ctx, readpref.Primary()) }

func (s *MongoStore) Close() error { return s.client.Disconnect(context.Background()) }

type UserRepoMongo struct {
	coll *mongo.Collection
}

func (u *UserRepoMongo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if _, err := u.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, contract.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (u *UserRepoMongo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (u *UserRepoMongo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return u.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (u *UserRepoMongo) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	user := &model.User{}
	err := u.coll.FindOne(ctx, filter).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, contract.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

type TransactionRepoMongo struct {
	coll *mongo.Collection
}

func (r *TransactionRepoMongo) Create(ctx context.Context, t *model.Transaction) (*model.Transaction, error) {
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepoMongo) FindByID(ctx context.Context, userID, id string) (*model.Transaction, error) {
	t := &model.Transaction{}
	err := r.coll.FindOne(ctx, ownedBy(userID, id)).Decode(t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, contract.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	normalizeTimes(t)
	return t, nil
}

func (r *TransactionRepoMongo) Find(ctx context.Context, c query.Criteria) (*model.TransactionPage, error) {
	filter := transactionFilter(c)

	var (
		transactions []model.Transaction
		total        int64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opts := options.Find().
			SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}).
			SetSkip(int64(c.Offset())).
			SetLimit(int64(c.Limit()))

		cursor, err := r.coll.Find(ctx, filter, opts)
		if err != nil {
			return fmt.Errorf("find transactions: %w", err)
		}
		transactions = []model.Transaction{}
		if err := cursor.All(ctx, &transactions); err != nil {
			return fmt.Errorf("decode transactions: %w", err)
		}
		for i := range transactions {
			normalizeTimes(&transactions[i])
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if total, err = r.coll.CountDocuments(ctx, filter); err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.TransactionPage{
		Transactions: transactions,
		CurrentPage:  c.Page,
		TotalPages:   query.TotalPages(total),
		TotalResults: total,
	}, nil
}

func (r *TransactionRepoMongo) Update(ctx context.Context, t *model.Transaction) (*model.Transaction, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: t.Title},
		{Key: "amount", Value: t.Amount},
		{Key: "category", Value: t.Category},
		{Key: "date", Value: t.Date},
		{Key: "notes", Value: t.Notes},
		{Key: "updatedAt", Value: t.UpdatedAt},
	}}}

	res, err := r.coll.UpdateOne(ctx, ownedBy(t.UserID, t.ID), update)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, contract.ErrNotFound
	}
	return t, nil
}

func (r *TransactionRepoMongo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.coll.DeleteOne(ctx, ownedBy(userID, id))
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if res.DeletedCount == 0 {
		return contract.ErrNotFound
	}
	return nil
}

func (r *TransactionRepoMongo) Summary(ctx context.Context, userID string) (*model.Summary, error) {
	cursor, err := r.coll.Aggregate(ctx, summaryPipeline(userID))
	if err != nil {
		return nil, fmt.Errorf("aggregate summary: %w", err)
	}
	var rows []model.Summary
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	if len(rows) == 0 {
		return &model.Summary{}, nil
	}
	return &rows[0], nil
}

func (r *TransactionRepoMongo) CategoryBreakdown(ctx context.Context, userID string) ([]model.CategoryTotal, error) {
	cursor, err := r.coll.Aggregate(ctx, breakdownPipeline(userID))
	if err != nil {
		return nil, fmt.Errorf("aggregate category breakdown: %w", err)
	}
	totals := []model.CategoryTotal{}
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, fmt.Errorf("decode category breakdown: %w", err)
	}
	return totals, nil
}

func ownedBy(userID, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "user", Value: userID}}
}

// transactionFilter is the document form of the same predicate whereClause builds for SQL.
func transactionFilter(c query.Criteria) bson.D {
	filter := bson.D{{Key: "user", Value: c.UserID}}

	if c.Search != "" {
		filter = append(filter, bson.E{Key: "title", Value: bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(c.Search)},
			{Key: "$options", Value: "i"},
		}})
	}
	if c.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: c.Category})
	}
	if c.StartDate != nil || c.EndDate != nil {
		bounds := bson.D{}
		if c.StartDate != nil {
			bounds = append(bounds, bson.E{Key: "$gte", Value: *c.StartDate})
		}
		if c.EndDate != nil {
			bounds = append(bounds, bson.E{Key: "$lte", Value: *c.EndDate})
		}
		filter = append(filter, bson.E{Key: "date", Value: bounds})
	}
	if c.MinAmount != nil || c.MaxAmount != nil {
		bounds := bson.D{}
		if c.MinAmount != nil {
			bounds = append(bounds, bson.E{Key: "$gte", Value: *c.MinAmount})
		}
		if c.MaxAmount != nil {
			bounds = append(bounds, bson.E{Key: "$lte", Value: *c.MaxAmount})
		}
		filter = append(filter, bson.E{Key: "amount", Value: bounds})
	}
	return filter
}

func summaryPipeline(userID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user", Value: userID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalAmount", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "totalTransactions", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

func breakdownPipeline(userID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user", Value: userID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

// BSON datetimes decode in the local zone.
func normalizeTimes(t *model.Transaction) {
	t.Date = t.Date.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
}
