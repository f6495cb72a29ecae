// path: store/mongo.go
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/geo"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/models"
)

// Mongo realizes Store on MongoDB. Multi-document mutations run inside a
// session transaction; the duplicate-flag rule is the partial unique
// index on (record_id, flagger_key) where resolved=false, so two racing
// submissions from one identity can never both commit.
type Mongo struct {
	client  *mongo.Client
	issues  *mongo.Collection
	flags   *mongo.Collection
	history *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		client:  db.Client(),
		issues:  db.Collection("issues"),
		flags:   db.Collection("flags"),
		history: db.Collection("status_history"),
	}
}

// unavailable wraps transient driver failures, letting typed engine
// errors pass through untouched.
func unavailable(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateFlag) || errors.Is(err, ErrConflict) {
		return err
	}
	return &UnavailableError{Op: op, Err: err}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id can never name an existing record.
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func (s *Mongo) InsertIssue(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if _, err := s.issues.InsertOne(ctx, issue); err != nil {
		return unavailable("insert issue", err)
	}
	return nil
}

func (s *Mongo) Issue(ctx context.Context, id string) (*models.Issue, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var rec models.Issue
	if err := s.issues.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, unavailable("load issue", err)
	}
	return &rec, nil
}

func (s *Mongo) IssuesWithinBox(ctx context.Context, box geo.BoundingBox, q ListQuery) ([]models.Issue, error) {
	filter := bson.M{
		"lat": bson.M{"$gte": box.South, "$lte": box.North},
	}
	if box.Wraps() {
		filter["$or"] = []bson.M{
			{"lng": bson.M{"$gte": box.West}},
			{"lng": bson.M{"$lte": box.East}},
		}
	} else {
		filter["lng"] = bson.M{"$gte": box.West, "$lte": box.East}
	}
	if !q.IncludeHidden {
		filter["visible"] = true
	}
	if q.Status != nil {
		filter["status"] = *q.Status
	}
	if q.Category != nil {
		filter["category"] = *q.Category
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if q.Offset > 0 {
		findOpts.SetSkip(int64(q.Offset))
	}
	if q.Limit > 0 {
		findOpts.SetLimit(int64(q.Limit))
	}

	cur, err := s.issues.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, unavailable("list issues", err)
	}
	defer cur.Close(ctx)

	var out []models.Issue
	if err := cur.All(ctx, &out); err != nil {
		return nil, unavailable("list issues", err)
	}
	return out, nil
}

func (s *Mongo) SubmitFlag(ctx context.Context, flag *models.Flag, threshold int) (*FlagOutcome, error) {
	if flag.ID.IsZero() {
		flag.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()

	sess, err := s.client.StartSession()
	if err != nil {
		return nil, unavailable("submit flag", err)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// Increment and conditionally hide in one pipeline update; the
		// second stage sees the bumped count.
		update := mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"flag_count": bson.M{"$add": bson.A{"$flag_count", 1}},
				"updated_at": now,
			}}},
			{{Key: "$set", Value: bson.M{
				"visible": bson.M{"$cond": bson.A{
					bson.M{"$gte": bson.A{"$flag_count", threshold}},
					false,
					"$visible",
				}},
			}}},
		}

		var before models.Issue
		err := s.issues.FindOneAndUpdate(sc, bson.M{"_id": flag.RecordID}, update,
			options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrNotFound
			}
			return nil, err
		}

		if _, err := s.flags.InsertOne(sc, flag); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrDuplicateFlag
			}
			return nil, err
		}

		after := before
		after.FlagCount++
		after.UpdatedAt = now
		if after.FlagCount >= threshold {
			after.Visible = false
		}
		return &FlagOutcome{
			Record:     &after,
			AutoHidden: before.Visible && !after.Visible,
		}, nil
	})
	if err != nil {
		return nil, unavailable("submit flag", err)
	}
	return result.(*FlagOutcome), nil
}

func (s *Mongo) ResolveFlags(ctx context.Context, recordID string, review models.FlagReview, visible, purge bool) ([]models.Flag, error) {
	oid, err := parseID(recordID)
	if err != nil {
		return nil, err
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return nil, unavailable("review flags", err)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		unresolved := bson.M{"record_id": oid, "resolved": false}

		cur, err := s.flags.Find(sc, unresolved)
		if err != nil {
			return nil, err
		}
		var resolved []models.Flag
		if err := cur.All(sc, &resolved); err != nil {
			return nil, err
		}

		if len(resolved) > 0 {
			if _, err := s.flags.UpdateMany(sc, unresolved, bson.M{
				"$set": bson.M{"resolved": true, "review": review},
			}); err != nil {
				return nil, err
			}
			for i := range resolved {
				resolved[i].Resolved = true
				r := review
				resolved[i].Review = &r
			}
		}

		set := bson.M{"visible": visible, "updated_at": time.Now().UTC()}
		if purge {
			set["purge_requested"] = true
		}
		res, err := s.issues.UpdateOne(sc, bson.M{"_id": oid}, bson.M{"$set": set})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrNotFound
		}
		return resolved, nil
	})
	if err != nil {
		return nil, unavailable("review flags", err)
	}
	if result == nil {
		return nil, nil
	}
	return result.([]models.Flag), nil
}

func (s *Mongo) CommitStatusChange(ctx context.Context, recordID string, previous models.IssueStatus, entry *models.StatusChange) (*models.Issue, error) {
	oid, err := parseID(recordID)
	if err != nil {
		return nil, err
	}
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return nil, unavailable("status change", err)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := s.issues.UpdateOne(sc,
			bson.M{"_id": oid, "status": previous},
			bson.M{"$set": bson.M{"status": entry.NewStatus, "updated_at": entry.CreatedAt}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			// Either gone or a concurrent transition won the race.
			n, err := s.issues.CountDocuments(sc, bson.M{"_id": oid})
			if err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, ErrNotFound
			}
			return nil, ErrConflict
		}

		if _, err := s.history.InsertOne(sc, entry); err != nil {
			return nil, err
		}

		var updated models.Issue
		if err := s.issues.FindOne(sc, bson.M{"_id": oid}).Decode(&updated); err != nil {
			return nil, err
		}
		return &updated, nil
	})
	if err != nil {
		return nil, unavailable("status change", err)
	}
	return result.(*models.Issue), nil
}

func (s *Mongo) InsertStatusChange(ctx context.Context, entry *models.StatusChange) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if _, err := s.history.InsertOne(ctx, entry); err != nil {
		return unavailable("insert status entry", err)
	}
	return nil
}

func (s *Mongo) History(ctx context.Context, recordID string) ([]models.StatusChange, error) {
	oid, err := parseID(recordID)
	if err != nil {
		return nil, err
	}

	cur, err := s.history.Find(ctx, bson.M{"record_id": oid},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, unavailable("load history", err)
	}
	defer cur.Close(ctx)

	var out []models.StatusChange
	if err := cur.All(ctx, &out); err != nil {
		return nil, unavailable("load history", err)
	}
	return out, nil
}

func (s *Mongo) FlagsByUser(ctx context.Context, userID string) ([]models.Flag, error) {
	cur, err := s.flags.Find(ctx, bson.M{"flagger_user_id": userID})
	if err != nil {
		return nil, unavailable("load user flags", err)
	}
	defer cur.Close(ctx)

	var out []models.Flag
	if err := cur.All(ctx, &out); err != nil {
		return nil, unavailable("load user flags", err)
	}
	return out, nil
}

func (s *Mongo) ActiveFlaggers(ctx context.Context, since time.Time) ([]string, error) {
	values, err := s.flags.Distinct(ctx, "flagger_user_id", bson.M{
		"flagger_user_id": bson.M{"$ne": ""},
		"created_at":      bson.M{"$gte": since},
	})
	if err != nil {
		return nil, unavailable("load active flaggers", err)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok && id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}
