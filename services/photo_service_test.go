package services

import (
	"context"
	"errors"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	put *s3.PutObjectInput
	get *s3.GetObjectInput
	err error
}

func (f *fakePresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.put = in
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://bucket.s3/put/" + *in.Key, Method: "PUT"}, nil
}

func (f *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.get = in
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://bucket.s3/get/" + *in.Key, Method: "GET"}, nil
}

func TestPhotoUploadURL(t *testing.T) {
	fake := &fakePresigner{}
	svc := NewPhotoService(fake, "photos")
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	url, key, err := svc.UploadURL(context.Background(), "u1", "../../me.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "profile-pics/u1/20240501123000-me.jpg", key)
	assert.Equal(t, "https://bucket.s3/put/"+key, url)
	assert.Equal(t, "photos", *fake.put.Bucket)
	assert.Equal(t, "image/jpeg", *fake.put.ContentType)

	_, _, err = svc.UploadURL(context.Background(), "u1", "me.exe", "application/octet-stream")
	assert.True(t, IsValidation(err))
	_, _, err = svc.UploadURL(context.Background(), "u1", "", "image/png")
	assert.True(t, IsValidation(err))
}

func TestPhotoReadURL(t *testing.T) {
	fake := &fakePresigner{}
	svc := NewPhotoService(fake, "photos")

	url, err := svc.ReadURL(context.Background(), "profile-pics/u1/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3/get/profile-pics/u1/a.jpg", url)

	_, err = svc.ReadURL(context.Background(), " ")
	assert.True(t, IsValidation(err))

	fake.err = errors.New("boom")
	_, err = svc.ReadURL(context.Background(), "k")
	assert.Error(t, err)
}
