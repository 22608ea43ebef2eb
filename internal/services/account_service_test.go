package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auraleen/internal/models"
)

// --- fakes ---

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID int
	failOn string // имя метода, который должен вернуть ошибку
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUserRepo) fail(method string) error {
	if f.failOn == method {
		return errors.New(method + " failed")
	}
	return nil
}

func (f *fakeUserRepo) Create(user *models.User) error {
	if err := f.fail("Create"); err != nil {
		return err
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByID(id int) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	if err := f.fail("GetByEmail"); err != nil {
		return nil, err
	}
	return f.users[email], nil
}

func (f *fakeUserRepo) UpdateProfile(id int, name, contactNumber, address string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.Name = name
			u.ContactNumber = contactNumber
			u.Address = address
		}
	}
	return nil
}

func (f *fakeUserRepo) UpdatePassword(id int, passwordHash string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
		}
	}
	return nil
}

func (f *fakeUserRepo) SetVerificationCode(id int, code string, expiresAt time.Time) error {
	for _, u := range f.users {
		if u.ID == id {
			c, e := code, expiresAt
			u.EmailVerificationToken = &c
			u.EmailVerificationExpires = &e
		}
	}
	return nil
}

func (f *fakeUserRepo) ReissueUnverified(id int, name, passwordHash, code string, expiresAt time.Time) error {
	for _, u := range f.users {
		if u.ID == id && !u.IsVerified {
			u.Name = name
			u.PasswordHash = passwordHash
			c, e := code, expiresAt
			u.EmailVerificationToken = &c
			u.EmailVerificationExpires = &e
		}
	}
	return nil
}

func (f *fakeUserRepo) MarkVerified(id int) error {
	for _, u := range f.users {
		if u.ID == id {
			u.IsVerified = true
			u.EmailVerificationToken = nil
			u.EmailVerificationExpires = nil
		}
	}
	return nil
}

func (f *fakeUserRepo) SetResetToken(id int, token string, expiresAt time.Time) error {
	if err := f.fail("SetResetToken"); err != nil {
		return err
	}
	for _, u := range f.users {
		if u.ID == id {
			t, e := token, expiresAt
			u.PasswordResetToken = &t
			u.PasswordResetExpires = &e
		}
	}
	return nil
}

func (f *fakeUserRepo) GetByActiveResetToken(token string, now time.Time) (*models.User, error) {
	for _, u := range f.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) ResetPassword(id int, passwordHash string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			u.PasswordResetToken = nil
			u.PasswordResetExpires = nil
		}
	}
	return nil
}

func (f *fakeUserRepo) UpdateRefresh(id int, token string, expiresAt time.Time) error {
	for _, u := range f.users {
		if u.ID == id {
			t, e := token, expiresAt
			u.RefreshToken = &t
			u.RefreshExpiresAt = &e
			u.RefreshRevoked = false
		}
	}
	return nil
}

func (f *fakeUserRepo) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	for _, u := range f.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken && !u.RefreshRevoked {
			t, e := newToken, newExpiresAt
			u.RefreshToken = &t
			u.RefreshExpiresAt = &e
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByRefreshToken(token string) (*models.User, error) {
	for _, u := range f.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			return u, nil
		}
	}
	return nil, nil
}

type fakeMailer struct {
	failSend  bool
	sentCodes []string
	sentLinks []string
}

func (m *fakeMailer) SendVerificationCode(email, code string) error {
	if m.failSend {
		return errors.New("smtp down")
	}
	m.sentCodes = append(m.sentCodes, code)
	return nil
}

func (m *fakeMailer) SendPasswordResetEmail(email, resetURL string) error {
	if m.failSend {
		return errors.New("smtp down")
	}
	m.sentLinks = append(m.sentLinks, resetURL)
	return nil
}

func newAccountService(repo *fakeUserRepo, mailer *fakeMailer, isProd bool) AccountService {
	return NewAccountService(repo, mailer, NewAuthService(), isProd)
}

// --- tests ---

func TestSignupWeakPasswordCreatesNoUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{}, false)

	// нет заглавной и спецсимвола
	_, err := svc.Signup("Ali", "ali@x.com", "abc12345")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.users)
}

func TestSignupMissingFields(t *testing.T) {
	svc := newAccountService(newFakeUserRepo(), &fakeMailer{}, false)
	_, err := svc.Signup("", "ali@x.com", "Str0ng!pw")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignupNormalizesEmailAndSendsCode(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newAccountService(repo, mailer, false)

	res, err := svc.Signup("Ali", "  ALI@X.com ", "Str0ng!pw")
	require.NoError(t, err)
	assert.True(t, res.EmailSent)
	assert.Empty(t, res.DevCode)

	user := repo.users["ali@x.com"]
	require.NotNil(t, user)
	assert.False(t, user.IsVerified)
	require.NotNil(t, user.EmailVerificationToken)
	assert.Len(t, *user.EmailVerificationToken, 6)
	require.Len(t, mailer.sentCodes, 1)
	assert.Equal(t, *user.EmailVerificationToken, mailer.sentCodes[0])
}

func TestSignupVerifiedDuplicateRejected(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{}, false)

	_, err := svc.Signup("Ali", "ali@x.com", "Str0ng!pw")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyCode("ali@x.com", *repo.users["ali@x.com"].EmailVerificationToken))

	_, err = svc.Signup("Someone Else", "ali@x.com", "0ther!Pass")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupUnverifiedDuplicateReissues(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{}, false)

	_, err := svc.Signup("Ali", "ali@x.com", "Str0ng!pw")
	require.NoError(t, err)
	firstCode := *repo.users["ali@x.com"].EmailVerificationToken
	firstHash := repo.users["ali@x.com"].PasswordHash

	_, err = svc.Signup("Aly", "ali@x.com", "N3w!Passw")
	require.NoError(t, err)

	user := repo.users["ali@x.com"]
	assert.Equal(t, "Aly", user.Name)
	assert.NotEqual(t, firstHash, user.PasswordHash)
	assert.NotEqual(t, firstCode, *user.EmailVerificationToken)
	assert.Len(t, repo.users, 1)
}

func TestSignupMailFailureStillSucceeds(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{failSend: true}, false)

	res, err := svc.Signup("Ali", "ali@x.com", "Str0ng!pw")
	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	// вне production показываем код
	assert.Equal(t, *repo.users["ali@x.com"].EmailVerificationToken, res.DevCode)
}

func TestSignupMailFailureHidesCodeInProduction(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{failSend: true}, true)

	res, err := svc.Signup("Ali", "ali@x.com", "Str0ng!pw")
	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	assert.Empty(t, res.DevCode)
}

func TestResendInvalidatesPreviousCode(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{}, false)

	_, err := svc.Signup("Ali", "ali@x.com", "Str0ng!pw")
	require.NoError(t, err)
	oldCode := *repo.users["ali@x.com"].EmailVerificationToken

	_, err = svc.ResendCode("ali@x.com")
	require.NoError(t, err)
	newCode := *repo.users["ali@x.com"].EmailVerificationToken
	require.NotEqual(t, oldCode, newCode)

	// старый код больше не работает, хотя и не истёк
	assert.ErrorIs(t, svc.VerifyCode("ali@x.com", oldCode), ErrCodeInvalid)
	assert.NoError(t, svc.VerifyCode("ali@x.com", newCode))
}

func TestResendUnknownEmail(t *testing.T) {
	svc := newAccountService(newFakeUserRepo(), &fakeMailer{}, false)
	_, err := svc.ResendCode("nobody@nowhere.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResendAlreadyVerified(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{}, false)

	_, err := svc.Signup("Ali", "ali@x.com", "Str0ng!pw")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyCode("ali@x.com", *repo.users["ali@x.com"].EmailVerificationToken))

	_, err = svc.ResendCode("ali@x.com")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyTwiceSecondFailsNoActiveCode(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{}, false)

	_, err := svc.Signup("Ali", "ali@x.com", "Str0ng!pw")
	require.NoError(t, err)
	code := *repo.users["ali@x.com"].EmailVerificationToken

	require.NoError(t, svc.VerifyCode("ali@x.com", code))
	assert.True(t, repo.users["ali@x.com"].IsVerified)

	// верификация терминальна: повтор с тем же кодом — "нет активного кода"
	assert.ErrorIs(t, svc.VerifyCode("ali@x.com", code), ErrNoActiveCode)
}

func TestVerifyExpiredCode(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{}, false)

	_, err := svc.Signup("Ali", "ali@x.com", "Str0ng!pw")
	require.NoError(t, err)
	user := repo.users["ali@x.com"]
	expired := time.Now().Add(-time.Minute)
	user.EmailVerificationExpires = &expired

	err = svc.VerifyCode("ali@x.com", *user.EmailVerificationToken)
	assert.ErrorIs(t, err, ErrCodeInvalid)
	assert.False(t, user.IsVerified)
}

func TestLoginRequiresVerification(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{}, false)

	_, err := svc.Signup("Ali", "ali@x.com", "Str0ng!pw")
	require.NoError(t, err)

	// до верификации логин не отличим от неверного пароля
	_, err = svc.Login("ali@x.com", "Str0ng!pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.VerifyCode("ali@x.com", *repo.users["ali@x.com"].EmailVerificationToken))

	user, err := svc.Login("ali@x.com", "Str0ng!pw")
	require.NoError(t, err)
	assert.Equal(t, "ali@x.com", user.Email)
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{}, false)

	_, err := svc.Signup("Ali", "ali@x.com", "Str0ng!pw")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyCode("ali@x.com", *repo.users["ali@x.com"].EmailVerificationToken))

	_, errUnknown := svc.Login("ghost@x.com", "Str0ng!pw")
	_, errWrongPw := svc.Login("ali@x.com", "Wr0ng!pwd")
	assert.Equal(t, errUnknown, errWrongPw)
}

func TestSignupResendVerifyLoginFlow(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{}, false)

	_, err := svc.Signup("Ali", "ali@x.com", "Str0ng!pw")
	require.NoError(t, err)

	_, err = svc.ResendCode("ali@x.com")
	require.NoError(t, err)

	require.NoError(t, svc.VerifyCode("ali@x.com", *repo.users["ali@x.com"].EmailVerificationToken))

	user, err := svc.Login("ali@x.com", "Str0ng!pw")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAccountService(repo, &fakeMailer{}, false)

	_, err := svc.Signup("Ali", "ali@x.com", "Str0ng!pw")
	require.NoError(t, err)

	user, err := svc.UpdateProfile("ali@x.com", "Ali Khan", "0300-0000000", "House 1, Lahore")
	require.NoError(t, err)
	assert.Equal(t, "Ali Khan", user.Name)
	assert.Equal(t, "0300-0000000", repo.users["ali@x.com"].ContactNumber)

	_, err = svc.UpdateProfile("ali@x.com", "  ", "", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateProfile("ghost@x.com", "Ghost", "", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
