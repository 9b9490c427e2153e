package billscan

import (
	"encoding/json"
	"testing"
)

func TestExtractConsumerNoLabeled(t *testing.T) {
	text := "MAHARASHTRA STATE ELECTRICITY BOARD\nConsumer No: 4821-IN-773\nBilling period 01/2024"
	got := ExtractConsumerNo(text)
	if got != "4821-IN-773" {
		t.Fatalf("expected 4821-IN-773 got %q", got)
	}
}

func TestExtractConsumerNoAccountVariant(t *testing.T) {
	text := "Account Number: 99120455\nDue immediately"
	got := ExtractConsumerNo(text)
	if got != "99120455" {
		t.Fatalf("expected 99120455 got %q", got)
	}
}

func TestExtractConsumerNoDigitFallback(t *testing.T) {
	// No recognizable label anywhere; the standalone 10-digit number must
	// still be picked up by the fallback pattern.
	text := "statement issued for 9876543210 period covered above"
	got := ExtractConsumerNo(text)
	if got != "9876543210" {
		t.Fatalf("expected fallback 9876543210 got %q", got)
	}
}

func TestExtractNameSalutation(t *testing.T) {
	text := "Bill for MR. RAMESH KUMAR, Pune 411001"
	got := ExtractName(text)
	if got != "RAMESH KUMAR" {
		t.Fatalf("expected RAMESH KUMAR got %q", got)
	}
}

func TestExtractNameLabel(t *testing.T) {
	text := "Consumer Name: ANITA DESHMUKH, Nashik Road"
	got := ExtractName(text)
	if got != "ANITA DESHMUKH" {
		t.Fatalf("expected ANITA DESHMUKH got %q", got)
	}
}

func TestExtractNamePositionalFallback(t *testing.T) {
	// No salutation and no name label; the uppercase run after the
	// consumer number should be read as the name.
	text := "Consumer No: 12345678 SUNITA PATIL, Nashik"
	got := ExtractName(text)
	if got != "SUNITA PATIL" {
		t.Fatalf("expected SUNITA PATIL via positional fallback got %q", got)
	}
}

func TestExtractBillDateVariants(t *testing.T) {
	if got := ExtractBillDate("Bill Date: 12-Jan-24 Amount due"); got != "12-Jan-24" {
		t.Fatalf("expected 12-Jan-24 got %q", got)
	}
	if got := ExtractBillDate("Date: 12/01/2024"); got != "12/01/2024" {
		t.Fatalf("expected 12/01/2024 got %q", got)
	}
	// No guessing: unmatched date stays empty.
	if got := ExtractBillDate("no dates here"); got != "" {
		t.Fatalf("expected empty got %q", got)
	}
}

func TestExtractAmountStripsSeparators(t *testing.T) {
	if got := ExtractAmount("Bill Amount Rs: 1,250.50"); got != "1250.50" {
		t.Fatalf("expected 1250.50 got %q", got)
	}
	if got := ExtractAmount("Total: Rs 840"); got != "840" {
		t.Fatalf("expected 840 got %q", got)
	}
}

func TestExtractFieldsUnrecognizableText(t *testing.T) {
	// Totally garbled text must still yield a complete record, all nil.
	d := ExtractFields("@@ ?? ~~ !!")
	if d.ConsumerNo != nil || d.Name != nil || d.BillDate != nil || d.Amount != nil {
		t.Fatalf("expected all nil fields got %+v", d)
	}
	if d.Readings.Current != nil || d.Readings.Previous != nil || d.Units != nil {
		t.Fatalf("expected nil readings and units got %+v", d)
	}
	if d.RawTextPreview != "@@ ?? ~~ !!" {
		t.Fatalf("unexpected preview %q", d.RawTextPreview)
	}
}

func TestExtractFieldsIdempotent(t *testing.T) {
	text := "Consumer No: 556677 MR. VIJAY RAO, Bill Date: 03/02/2024 Bill Amount Rs: 2,100 Previous Reading: 980 Current Reading: 1050"
	a, _ := json.Marshal(ExtractFields(text))
	b, _ := json.Marshal(ExtractFields(text))
	if string(a) != string(b) {
		t.Fatalf("extraction not idempotent:\n%s\n%s", a, b)
	}
}

func TestExtractFieldsPopulated(t *testing.T) {
	text := "Consumer No: 556677 Bill Date: 03/02/2024 Bill Amount Rs: 2,100 Previous Reading: 980 Current Reading: 1050"
	d := ExtractFields(text)
	if d.ConsumerNo == nil || *d.ConsumerNo != "556677" {
		t.Fatalf("consumerNo=%v", d.ConsumerNo)
	}
	if d.BillDate == nil || *d.BillDate != "03/02/2024" {
		t.Fatalf("billDate=%v", d.BillDate)
	}
	if d.Amount == nil || *d.Amount != 2100 {
		t.Fatalf("amount=%v", d.Amount)
	}
	if d.Units == nil || *d.Units != 70 {
		t.Fatalf("units=%v", d.Units)
	}
}
