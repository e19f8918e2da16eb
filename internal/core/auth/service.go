// internal/core/auth/service.go
package auth

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/iterator"
)

// ErrCredenciaisInvalidas cobre tanto usuário inexistente quanto senha errada,
// para não vazar qual dos dois falhou.
var ErrCredenciaisInvalidas = errors.New("usuário ou senha inválidos")

type Service interface {
	Login(ctx context.Context, usuario, senha string) (string, error)
}

type service struct {
	db      *firestore.Client
	segredo []byte
	log     *zap.SugaredLogger
}

// NewService cria o serviço de autenticação. O segredo assina os tokens JWT
// emitidos no login.
func NewService(db *firestore.Client, segredo []byte, log *zap.SugaredLogger) Service {
	return &service{db: db, segredo: segredo, log: log}
}

// Usuario representa um usuário da aplicação no Firestore.
type Usuario struct {
	Usuario   string   `firestore:"username"`
	SenhaHash string   `firestore:"passwordHash"`
	Perfis    []string `firestore:"roles"`
}

func (s *service) Login(ctx context.Context, usuario, senha string) (string, error) {
	query := s.db.Collection("users").Where("username", "==", usuario).Limit(1).Documents(ctx)
	defer query.Stop()

	doc, err := query.Next()
	if err == iterator.Done {
		return "", ErrCredenciaisInvalidas
	}
	if err != nil {
		s.log.Errorw("erro ao consultar usuário", "erro", err)
		return "", errors.New("erro ao consultar o banco de dados")
	}

	var u Usuario
	if err := doc.DataTo(&u); err != nil {
		return "", errors.New("erro ao ler dados do usuário")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.SenhaHash), []byte(senha)); err != nil {
		return "", ErrCredenciaisInvalidas
	}

	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": u.Usuario,
		"roles":    u.Perfis,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})

	token, err := claims.SignedString(s.segredo)
	if err != nil {
		return "", errors.New("erro ao gerar token de acesso")
	}
	return token, nil
}
