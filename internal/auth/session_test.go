package auth_test

import (
	"strings"
	"time"

	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("SessionCodec", func() {
	var (
		codec *auth.SessionCodec
		now   time.Time
		who   auth.SessionUser
	)

	ginkgo.BeforeEach(func() {
		var err error
		codec, err = auth.NewSessionCodec(testSecret)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
		codec.WithClock(func() time.Time { return now })

		who = auth.SessionUser{
			ID:         "usr_abc_12345",
			Email:      "hr@x.com",
			FirstName:  "Hana",
			LastName:   "Ruiz",
			Role:       "hr",
			Department: "People",
		}
	})

	ginkgo.It("round-trips the identity claims", func() {
		// Given
		token, err := codec.Issue(who, time.Hour)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		// When
		claims, err := codec.Verify(token)

		// Then
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(claims.User).To(gomega.Equal(who))
		gomega.Expect(claims.Subject).To(gomega.Equal(who.ID))
		gomega.Expect(claims.ID).ToNot(gomega.BeEmpty())
		gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("==", now.Add(time.Hour)))
	})

	ginkgo.It("gives every token a distinct id", func() {
		a, _ := codec.Issue(who, time.Hour)
		b, _ := codec.Issue(who, time.Hour)
		ca, _ := codec.Verify(a)
		cb, _ := codec.Verify(b)
		gomega.Expect(ca.ID).ToNot(gomega.Equal(cb.ID))
	})

	ginkgo.It("rejects a token issued with a negative ttl", func() {
		token, err := codec.Issue(who, -time.Second)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		claims, err := codec.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(auth.ErrTokenExpired))
		gomega.Expect(claims).To(gomega.BeNil())
	})

	ginkgo.It("treats expiry as exclusive", func() {
		token, err := codec.Issue(who, time.Minute)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		now = now.Add(time.Minute - time.Second)
		_, err = codec.Verify(token)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		now = now.Add(time.Second)
		_, err = codec.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(auth.ErrTokenExpired))
	})

	ginkgo.It("rejects a tampered signature", func() {
		token, _ := codec.Issue(who, time.Hour)
		parts := strings.Split(token, ".")
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		tampered := parts[0] + "." + parts[1] + "." + string(sig)

		_, err := codec.Verify(tampered)
		gomega.Expect(err).To(gomega.MatchError(auth.ErrInvalidToken))
	})

	ginkgo.It("rejects a token signed with another secret", func() {
		other, err := auth.NewSessionCodec("ffffffffffffffffffffffffffffffff")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		token, _ := other.Issue(who, time.Hour)

		_, err = codec.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(auth.ErrInvalidToken))
	})

	ginkgo.It("rejects unsigned and foreign-algorithm tokens", func() {
		claims := &auth.Claims{
			User: who,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		_, err = codec.Verify(unsigned)
		gomega.Expect(err).To(gomega.MatchError(auth.ErrInvalidToken))

		hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		_, err = codec.Verify(hs512)
		gomega.Expect(err).To(gomega.MatchError(auth.ErrInvalidToken))
	})

	ginkgo.It("rejects garbage and empty input", func() {
		_, err := codec.Verify("not.a.token")
		gomega.Expect(err).To(gomega.MatchError(auth.ErrInvalidToken))
		_, err = codec.Verify("")
		gomega.Expect(err).To(gomega.MatchError(auth.ErrInvalidToken))
	})

	ginkgo.It("refuses short or empty secrets", func() {
		_, err := auth.NewSessionCodec("")
		gomega.Expect(err).To(gomega.MatchError(auth.ErrWeakSecret))
		_, err = auth.NewSessionCodec("too-short")
		gomega.Expect(err).To(gomega.MatchError(auth.ErrWeakSecret))
	})
})

var _ = ginkgo.Describe("Hasher", func() {
	hasher := auth.NewHasher(4)

	ginkgo.It("verifies the original password only", func() {
		hash, err := hasher.Hash("Password1")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(hash).ToNot(gomega.Equal("Password1"))

		gomega.Expect(hasher.Verify("Password1", hash)).To(gomega.BeTrue())
		gomega.Expect(hasher.Verify("password1", hash)).To(gomega.BeFalse())
	})

	ginkgo.It("salts every hash", func() {
		a, _ := hasher.Hash("Password1")
		b, _ := hasher.Hash("Password1")
		gomega.Expect(a).ToNot(gomega.Equal(b))
	})

	ginkgo.It("fails closed on malformed hashes", func() {
		gomega.Expect(hasher.Verify("Password1", "")).To(gomega.BeFalse())
		gomega.Expect(hasher.Verify("Password1", "not-a-bcrypt-hash")).To(gomega.BeFalse())
	})
})
