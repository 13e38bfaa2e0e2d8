package benchmark

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/NDP4/CompanyLock-Manager/internal/server/devserver"
	"github.com/NDP4/CompanyLock-Manager/pkg/crypto/adaptive"
)

// BenchmarkPasswordHash benchmarks argon2id hashing of an admin password.
func BenchmarkPasswordHash(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := devserver.HashPassword("admin123"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkPasswordVerify benchmarks login-time verification. Wrong and
// right passwords should cost the same.
func BenchmarkPasswordVerify(b *testing.B) {
	hash, err := devserver.HashPassword("admin123")
	if err != nil {
		b.Fatal(err)
	}

	for _, pw := range []string{"admin123", "wrong-password"} {
		b.Run(pw, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				devserver.VerifyPassword(pw, hash)
			}
		})
	}
}

// BenchmarkSessionSeal benchmarks encrypting session blobs of typical sizes.
func BenchmarkSessionSeal(b *testing.B) {
	key, err := adaptive.GenerateKey()
	if err != nil {
		b.Fatal(err)
	}
	cipher, err := adaptive.New(key)
	if err != nil {
		b.Fatal(err)
	}
	aad := []byte("benchmark")

	for _, size := range []int{256, 1024, 4096} {
		data := make([]byte, size)
		_, _ = rand.Read(data)

		b.Run(fmt.Sprintf("encrypt_%d", size), func(b *testing.B) {
			b.SetBytes(int64(size))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := cipher.Encrypt(data, aad); err != nil {
					b.Fatal(err)
				}
			}
		})

		sealed, _ := cipher.Encrypt(data, aad)
		b.Run(fmt.Sprintf("decrypt_%d", size), func(b *testing.B) {
			b.SetBytes(int64(size))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := cipher.Decrypt(sealed, aad); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
