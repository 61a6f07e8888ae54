package catalog

import "server/internal/format"

// Census template headers shared by the 401(k) tests.
var deferralHeaders = []string{
	"last_name", "first_name", "employee_id", "birth_date", "hire_date",
	"compensation", "employee_deferrals", "employer_match", "hce", "key_employee",
}

var benefitsHeaders = []string{
	"last_name", "first_name", "employee_id", "birth_date", "hire_date",
	"compensation", "benefit_amount", "hce", "key_employee", "union_employee",
}

func init() {
	register(TestDefinition{
		Key:       "adpTest",
		Name:      "ADP Test",
		Criterion: "IRC §401(k)(3): the average deferral percentage of highly compensated employees may not exceed 1.25 times the NHCE average, or the lesser of 2 times and the NHCE average plus 2 percentage points.",
		ResponsePath: []string{"Test Results", "adpTest"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "Total HCEs", Kind: format.KindCount},
			{Key: "Total NHCEs", Kind: format.KindCount},
			{Key: "HCE ADP (%)", Kind: format.KindPercentage},
			{Key: "NHCE ADP (%)", Kind: format.KindPercentage},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Refund excess deferrals to HCEs within 2.5 months after plan year end to avoid the 10% excise tax.",
			"Make qualified nonelective contributions (QNECs) to NHCEs to raise the NHCE average.",
			"Recharacterize excess deferrals as catch-up contributions for eligible HCEs.",
		},
		Consequences: []string{
			"Excess contributions not corrected within 12 months can disqualify the plan's cash-or-deferred arrangement.",
			"Late refunds are subject to a 10% employer excise tax under IRC §4979.",
		},
		RequiresPlanYear: true,
		TemplateHeaders:  deferralHeaders,
	})

	register(TestDefinition{
		Key:       "acpTest",
		Name:      "ACP Test",
		Criterion: "IRC §401(m)(2): the average contribution percentage of HCEs, counting matching and after-tax contributions, is limited relative to the NHCE average under the same 1.25x / 2x+2 thresholds as the ADP test.",
		ResponsePath: []string{"Test Results", "acpTest"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "Total HCEs", Kind: format.KindCount},
			{Key: "Total NHCEs", Kind: format.KindCount},
			{Key: "HCE ACP (%)", Kind: format.KindPercentage},
			{Key: "NHCE ACP (%)", Kind: format.KindPercentage},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Distribute excess aggregate contributions to affected HCEs, adjusted for earnings.",
			"Make qualified matching contributions (QMACs) to NHCEs.",
		},
		Consequences: []string{
			"Uncorrected excess aggregate contributions jeopardize plan qualification.",
			"Refunds made after 2.5 months trigger the §4979 excise tax.",
		},
		RequiresPlanYear: true,
		TemplateHeaders:  deferralHeaders,
	})

	register(TestDefinition{
		Key:       "topHeavyTest",
		Name:      "Top Heavy Test",
		Criterion: "IRC §416: a plan is top-heavy when key employees hold more than 60% of total plan assets, requiring minimum contributions and accelerated vesting for non-key employees.",
		ResponsePath: []string{"Test Results", "topHeavyTest"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "Key Employees", Kind: format.KindCount},
			{Key: "Key Employee Assets", Kind: format.KindCurrency},
			{Key: "Total Plan Assets", Kind: format.KindCurrency},
			{Key: "Top Heavy Percentage (%)", Kind: format.KindPercentage},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Contribute the top-heavy minimum (3% of compensation) for all non-key participants.",
			"Apply the accelerated top-heavy vesting schedule to employer contributions.",
		},
		Consequences: []string{
			"Failure to provide minimum contributions can disqualify the plan retroactively.",
			"Affected non-key employees may claim make-up contributions with earnings.",
		},
		RequiresPlanYear: true,
		TemplateHeaders: []string{
			"last_name", "first_name", "employee_id", "birth_date", "hire_date",
			"account_balance", "key_employee", "officer", "ownership_percent",
		},
	})

	register(TestDefinition{
		Key:       "coverageTest",
		Name:      "Coverage Test",
		Criterion: "IRC §410(b): the percentage of NHCEs benefiting under the plan must be at least 70% of the percentage of HCEs benefiting (ratio percentage test).",
		ResponsePath: []string{"Test Results", "coverageTest"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "HCEs Benefiting", Kind: format.KindCount},
			{Key: "NHCEs Benefiting", Kind: format.KindCount},
			{Key: "Ratio Percentage (%)", Kind: format.KindPercentage},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Expand eligibility to additional NHCE classifications retroactive to the plan year.",
			"Adopt a corrective amendment under Treas. Reg. §1.401(a)(4)-11(g) within 9.5 months of year end.",
		},
		Consequences: []string{
			"A plan failing coverage is disqualified for the year unless corrected.",
			"Highly compensated participants lose deferral exclusions on disqualification.",
		},
		RequiresPlanYear: true,
		TemplateHeaders:  deferralHeaders,
	})

	register(TestDefinition{
		Key:       "cafeteriaKeyEmployeeTest",
		Name:      "Cafeteria Plan Key Employee Concentration Test",
		Criterion: "IRC §125(b)(2): nontaxable benefits provided to key employees may not exceed 25% of the nontaxable benefits provided to all employees under the cafeteria plan.",
		ResponsePath: []string{"Test Results", "cafeteriaKeyEmployeeTest"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "Key Employees", Kind: format.KindCount},
			{Key: "Key Employee Benefits", Kind: format.KindCurrency},
			{Key: "Total Benefits", Kind: format.KindCurrency},
			{Key: "Key Employee Concentration (%)", Kind: format.KindPercentage},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Reduce key employee elections prospectively for the remainder of the plan year.",
			"Include excess benefits in key employees' gross income for the year of failure.",
		},
		Consequences: []string{
			"Key employees are taxed on the value of benefits they could have elected as cash.",
			"Failure is reported on the key employees' W-2s for the plan year.",
		},
		RequiresPlanYear: true,
		TemplateHeaders:  benefitsHeaders,
	})

	register(TestDefinition{
		Key:       "cafeteriaEligibilityTest",
		Name:      "Cafeteria Plan Eligibility Test",
		Criterion: "IRC §125(b)(1)(A): the plan must not discriminate in favor of highly compensated individuals as to eligibility to participate.",
		ResponsePath: []string{"Test Results", "cafeteriaEligibilityTest"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "Eligible HCEs", Kind: format.KindCount},
			{Key: "Eligible NHCEs", Kind: format.KindCount},
			{Key: "Eligibility Ratio (%)", Kind: format.KindPercentage},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Amend eligibility conditions so NHCEs qualify on the same terms as HCEs.",
			"Document the safe harbor eligibility percentages in the plan records.",
		},
		Consequences: []string{
			"Highly compensated participants lose the §125 income exclusion.",
		},
		RequiresPlanYear: true,
		TemplateHeaders:  benefitsHeaders,
	})

	register(TestDefinition{
		Key:       "dcap55BenefitsTest",
		Name:      "DCAP 55% Average Benefits Test",
		Criterion: "IRC §129(d)(8): the average dependent care benefit provided to NHCEs must be at least 55% of the average benefit provided to HCEs.",
		ResponsePath: []string{"Test Results", "dcap55BenefitsTest"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "HCE Average Benefit", Kind: format.KindCurrency},
			{Key: "NHCE Average Benefit", Kind: format.KindCurrency},
			{Key: "Average Benefits Ratio (%)", Kind: format.KindPercentage},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Reduce HCE dependent care elections until the 55% ratio is met.",
			"Treat excess HCE benefits as taxable wages for the plan year.",
		},
		Consequences: []string{
			"All HCE dependent care benefits become taxable when the test fails.",
		},
		RequiresPlanYear: true,
		TemplateHeaders:  benefitsHeaders,
	})

	register(TestDefinition{
		Key:       "dcapContributionsTest",
		Name:      "DCAP Contributions and Benefits Test",
		Criterion: "IRC §129(d)(2): contributions and benefits under a dependent care assistance program must not discriminate in favor of highly compensated employees.",
		ResponsePath: []string{"Test Results", "dcapContributionsTest"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "HCE Participants", Kind: format.KindCount},
			{Key: "NHCE Participants", Kind: format.KindCount},
			{Key: "HCE Utilization (%)", Kind: format.KindPercentage},
			{Key: "NHCE Utilization (%)", Kind: format.KindPercentage},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Equalize the benefit formula across compensation groups.",
			"Communicate the program to NHCEs to raise participation.",
		},
		Consequences: []string{
			"HCEs lose the §129 exclusion and the benefits become W-2 wages.",
		},
		RequiresPlanYear: true,
		TemplateHeaders:  benefitsHeaders,
	})

	register(TestDefinition{
		Key:       "hraEligibilityTest",
		Name:      "HRA Eligibility Test",
		Criterion: "IRC §105(h)(3): a self-insured health reimbursement arrangement must benefit 70% of all employees, or 80% of eligible employees where at least 70% are eligible.",
		ResponsePath: []string{"Test Results", "hraEligibilityTest"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "Eligible Employees", Kind: format.KindCount},
			{Key: "Benefiting Employees", Kind: format.KindCount},
			{Key: "Eligibility Percentage (%)", Kind: format.KindPercentage},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Extend HRA eligibility to excluded employee classes.",
			"Remove waiting periods that disproportionately exclude NHCEs.",
		},
		Consequences: []string{
			"Reimbursements to highly compensated individuals become taxable excess reimbursements.",
		},
		RequiresPlanYear: true,
		TemplateHeaders:  benefitsHeaders,
	})

	register(TestDefinition{
		Key:       "hraBenefitsTest",
		Name:      "HRA Benefits Test",
		Criterion: "IRC §105(h)(4): all benefits provided to highly compensated individuals under a self-insured plan must be provided to all other participants on the same terms.",
		ResponsePath: []string{"Test Results", "hraBenefitsTest"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "HCI Maximum Benefit", Kind: format.KindCurrency},
			{Key: "Non-HCI Maximum Benefit", Kind: format.KindCurrency},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Align reimbursement maximums across all participant classes.",
			"Remove benefit features available only to officers or top-paid employees.",
		},
		Consequences: []string{
			"Discriminatory benefits are included in highly compensated individuals' income under §105(h)(7).",
		},
		RequiresPlanYear: true,
		TemplateHeaders:  benefitsHeaders,
	})

	register(TestDefinition{
		Key:       "fsaEligibilityTest",
		Name:      "Health FSA Eligibility Test",
		Criterion: "A health flexible spending arrangement must satisfy the §105(h) eligibility standards applied through the §125 cafeteria plan rules.",
		ResponsePath: []string{"Test Results", "fsaEligibilityTest"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "Eligible HCEs", Kind: format.KindCount},
			{Key: "Eligible NHCEs", Kind: format.KindCount},
			{Key: "Eligibility Ratio (%)", Kind: format.KindPercentage},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Amend the FSA to cover employee groups currently excluded.",
		},
		Consequences: []string{
			"HCE salary reductions for the FSA become taxable if the arrangement is discriminatory.",
		},
		RequiresPlanYear: true,
		TemplateHeaders:  benefitsHeaders,
	})

	// Legacy simple cafeteria test predates the plan-year field on the
	// upload form and still submits without one.
	register(TestDefinition{
		Key:       "simpleCafeteriaPlanTest",
		Name:      "Simple Cafeteria Plan Safe Harbor",
		Criterion: "IRC §125(j): an eligible small employer maintaining a simple cafeteria plan is treated as meeting the §125 nondiscrimination requirements.",
		ResponsePath: []string{"Result"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "Eligible Employees", Kind: format.KindCount},
			{Key: "Minimum Contribution Met", Kind: format.KindText},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Make the required uniform employer contribution for all eligible employees.",
		},
		Consequences: []string{
			"Loss of the safe harbor subjects the plan to the full §125 testing suite.",
		},
		RequiresPlanYear: false,
		TemplateHeaders:  benefitsHeaders,
	})

	register(TestDefinition{
		Key:       "ratioPercentageTest",
		Name:      "Ratio Percentage Test",
		Criterion: "Treas. Reg. §1.410(b)-2(b)(2): the plan's ratio percentage, NHCE coverage over HCE coverage, must equal or exceed 70%.",
		ResponsePath: []string{"ratioPercentageTest"},
		Fields: []FieldSpec{
			{Key: "Total Employees", Kind: format.KindCount},
			{Key: "HCE Coverage (%)", Kind: format.KindPercentage},
			{Key: "NHCE Coverage (%)", Kind: format.KindPercentage},
			{Key: "Ratio Percentage (%)", Kind: format.KindPercentage},
			{Key: "Test Result", Kind: format.KindText},
		},
		CorrectiveActions: []string{
			"Bring additional NHCEs into the plan by corrective amendment.",
		},
		Consequences: []string{
			"The plan must fall back to the average benefit test or face disqualification.",
		},
		RequiresPlanYear: false,
		TemplateHeaders:  deferralHeaders,
	})
}
