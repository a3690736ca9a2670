package auth

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JaThHu/Notizen-App/internal/database"
	"github.com/JaThHu/Notizen-App/internal/domain"
)

// Store is the user persistence surface the handler consumes.
type Store interface {
	Insert(ctx context.Context, name, email, passwordHash string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (domain.User, error)
}

type Repository struct {
	users *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{users: db.Collection(database.UsersCollection)}
}

// Insert stores a new user. The unique email index turns a duplicate into a
// driver error the handler maps to a conflict.
func (r *Repository) Insert(ctx context.Context, name, email, passwordHash string) (domain.User, error) {
	now := time.Now().UTC()
	u := domain.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.users.InsertOne(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// FindByEmail expects the email already lowercased at the boundary; lookups
// are case-insensitive because storage is lowercase too.
func (r *Repository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	return u, err
}

func (r *Repository) FindByID(ctx context.Context, id primitive.ObjectID) (domain.User, error) {
	var u domain.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, err
}
