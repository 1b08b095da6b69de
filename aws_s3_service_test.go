package smile_request_report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/google/uuid"
)

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		path       string
		wantBucket string
		wantKey    string
		wantOK     bool
	}{
		{"s3://igo-logs/2024/requests.log", "igo-logs", "2024/requests.log", true},
		{"s3://igo-logs/requests.log", "igo-logs", "requests.log", true},
		{"s3://igo-logs/", "", "", false},
		{"s3://igo-logs", "", "", false},
		{"s3:///requests.log", "", "", false},
		{"/var/log/smile/requests.log", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			bucket, key, ok := ParseS3URL(tt.path)
			if bucket != tt.wantBucket || key != tt.wantKey || ok != tt.wantOK {
				t.Errorf("got (%q, %q, %v) want (%q, %q, %v)", bucket, key, ok, tt.wantBucket, tt.wantKey, tt.wantOK)
			}
		})
	}
}

func TestAWSS3(t *testing.T) {
	if TestConfig.SAML2AWSBin == "" || TestConfig.AWSDestBucket == "" {
		t.Skip("no saml2aws credentials configured")
	}
	session, err := strconv.ParseFloat(TestConfig.AWSSession, 64)
	if err != nil {
		t.Fatalf("invalid aws session: %q", err)
	}
	awsS3Service := NewAWSS3Service(TestConfig.SAML2AWSBin, TestConfig.SAMLProfile, TestConfig.SAMLRegion, session)
	ctx := context.Background()

	t.Run("put object without saml2aws token", func(t *testing.T) {
		wantErr := "Failed to load SDK configuration: failed to get shared config profile, bogus profile"
		_, gotErr := createClient("bogus profile", "bogus region")
		if gotErr == nil || gotErr.Error() != wantErr {
			t.Fatalf("got %q want %q", gotErr, wantErr)
		}
	})

	t.Run("report round trip", func(t *testing.T) {
		report := []byte(FormatHeader() + "\n" + RequestJSONSummaryLine + "\n")
		key := fmt.Sprintf("request_summary_%s.tsv", uuid.NewString())
		err := awsS3Service.PutReport(ctx, key, TestConfig.AWSDestBucket, report)
		if err != nil {
			t.Fatalf("cannot PutReport: %q", err)
		}
		body, err := awsS3Service.GetLogObject(ctx, key, TestConfig.AWSDestBucket)
		if err != nil {
			t.Fatalf("cannot GetLogObject: %q", err)
		}
		got, err := io.ReadAll(body)
		body.Close()
		if err != nil {
			t.Fatalf("cannot read object: %q", err)
		}
		if !bytes.Equal(got, report) {
			t.Errorf("got %q want %q", got, report)
		}
		err = awsS3Service.DeleteObject(ctx, key, TestConfig.AWSDestBucket)
		if err != nil {
			t.Fatalf("cannot DeleteObject: %q", err)
		}
	})
}
