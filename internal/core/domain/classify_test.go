package domain

import "testing"

func TestClassifyQueryTopics(t *testing.T) {
	cases := []struct {
		query string
		want  QueryTopic
	}{
		{"I need health insurance for 57 year old male", TopicHealth},
		{"does my policy cover hospitalization", TopicHealth},
		{"what does car insurance cover", TopicCar},
		{"is my bicycle covered against theft", TopicBike},
		{"compare health_policy_1 and health_policy_2", TopicComparison},
		{"which is better, full coverage or liability", TopicComparison},
		{"Hi", TopicGreeting},
		{"good morning", TopicGreeting},
		{"tell me a joke", TopicUnknown},
		{"", TopicUnknown},
		{"   ", TopicUnknown},
	}
	for _, tc := range cases {
		if got := ClassifyQuery(tc.query).Topic; got != tc.want {
			t.Fatalf("ClassifyQuery(%q).Topic = %q, want %q", tc.query, got, tc.want)
		}
	}
}

func TestClassifyQueryIntents(t *testing.T) {
	c := ClassifyQuery("hello, I'm looking for an insurance policy")
	if !c.InsuranceIntent {
		t.Fatal("insurance intent not detected")
	}
	if !c.HelpIntent {
		t.Fatal("help intent not detected")
	}
	if c.Topic == TopicGreeting {
		t.Fatal("greeting must not win over insurance intent")
	}

	if ClassifyQuery("hey there").InsuranceIntent {
		t.Fatal("false insurance intent on a plain greeting")
	}
}

func TestClassifyQuerySpecificInsurance(t *testing.T) {
	if !ClassifyQuery("health insurance question").SpecificInsurance() {
		t.Fatal("health topic should count as specific insurance")
	}
	if !ClassifyQuery("how do premiums work").SpecificInsurance() {
		t.Fatal("insurance vocabulary alone should count as specific insurance")
	}
	if ClassifyQuery("what time is it").SpecificInsurance() {
		t.Fatal("unrelated query misclassified as specific insurance")
	}
}

func TestClassifyQueryIsCaseAndPunctuationInsensitive(t *testing.T) {
	a := ClassifyQuery("WHAT DOES CAR INSURANCE COVER?")
	b := ClassifyQuery("what does car insurance cover")
	if a != b {
		t.Fatalf("classification differs on case/punctuation: %+v vs %+v", a, b)
	}
}
