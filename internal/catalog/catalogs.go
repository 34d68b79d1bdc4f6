package catalog

// Raw rule tables, transcribed from the sheet's prioritized IFS chains.
// Order is priority: upstream forward evaluation takes the first passing
// branch. The last branch of every table is the TRUE catch-all.
//
// The TRADE signal table carries the duplicated OVERSOLD REVERSAL row
// exactly as the sheet does; Load dedupes it and reports the finding.

var signalTradeBranches = []*Branch{
	{Order: 1, Condition: "$G<$AC", Result: "STOP OUT"},
	{Order: 2, Condition: "AND($G>$AD,$X>1.5,$U>20)", Result: "BREAKOUT"},
	{Order: 3, Condition: "AND($R<30,$T<0.2,$G>$I)", Result: "OVERSOLD REVERSAL"},
	{Order: 3, Condition: "AND($R<30,$T<0.2,$G>$I)", Result: "OVERSOLD REVERSAL"},
	{Order: 4, Condition: "AND($S>0,$R>50,$R<70,$U>25)", Result: "MOMENTUM BUY"},
	{Order: 5, Condition: "AND($G>$Q,$G<$J,$R>40,$R<55)", Result: "PULLBACK BUY"},
	{Order: 6, Condition: "AND($R>70,$V>1)", Result: "OVERBOUGHT"},
	{Order: 7, Condition: "AND($U<15,$G>$AC)", Result: "RANGE"},
	{Order: 8, Condition: "AND($G>$Q,$R>40,$R<70)", Result: "HOLD"},
	{Order: 9, Condition: "AND($G<$Q,$S<0)", Result: "WEAKENING"},
	{Order: 10, Condition: "TRUE", Result: "NEUTRAL"},
}

var signalInvestBranches = []*Branch{
	{Order: 1, Condition: "$G<$AC", Result: "STOP OUT"},
	{Order: 2, Condition: "AND($AG<-0.4,$R<35,$G>$AC)", Result: "DEEP VALUE"},
	{Order: 3, Condition: "AND($G<$Q,$R<40,$AG<-0.25)", Result: "ACCUMULATE"},
	{Order: 4, Condition: "AND(ABS($G-$AH)/$AH<0.05,$R>40,$R<60)", Result: "FAIR VALUE"},
	{Order: 5, Condition: "AND($G>$Q,$I>$J,$J>$Q,$U>20)", Result: "COMPOUNDER"},
	{Order: 6, Condition: "AND($G>$AE,$R>70)", Result: "STRETCHED"},
	{Order: 7, Condition: "AND($G>$Q,$R>40,$R<75)", Result: "HOLD"},
	{Order: 8, Condition: "AND($G<$Q,$S<0,$U>25)", Result: "AVOID"},
	{Order: 9, Condition: "TRUE", Result: "NEUTRAL"},
}

// DECISION tables use the typed check variants. The stop-out rows keep a
// condition string so the narrator can show the price/support values.

var decisionTradeBranches = []*Branch{
	{Order: 1, Check: CheckStopOut, Condition: "$G<$AC", Result: "EXIT POSITION",
		RequiresPurchased: true},
	{Order: 2, Check: CheckSignal, Signals: []string{"OVERBOUGHT", "STRETCHED"}, Result: "TAKE PROFIT",
		RequiresPurchased: true},
	{Order: 3, Check: CheckPattern, Signals: []string{"BREAKOUT", "MOMENTUM BUY"}, PatternReq: PatternBullish, Result: "TRADE LONG",
		RequiresNotPurchased: true},
	{Order: 4, Check: CheckSignal, Signals: []string{"OVERSOLD REVERSAL", "PULLBACK BUY"}, Result: "SPECULATIVE BUY",
		RequiresNotPurchased: true},
	{Order: 5, Check: CheckPattern, Signals: []string{"WEAKENING", "STOP OUT"}, PatternReq: PatternBearish, Result: "AVOID",
		RequiresNotPurchased: true},
	{Order: 6, Check: CheckPurchased, Result: "HOLD POSITION",
		RequiresPurchased: true},
	{Order: 7, Check: CheckDefault, Result: "WAIT"},
}

var decisionInvestBranches = []*Branch{
	{Order: 1, Check: CheckStopOut, Condition: "$G<$AC", Result: "EXIT POSITION",
		RequiresPurchased: true},
	{Order: 2, Check: CheckSignal, Signals: []string{"STRETCHED", "OVERBOUGHT"}, Result: "TRIM",
		RequiresPurchased: true},
	{Order: 3, Check: CheckPattern, Signals: []string{"DEEP VALUE", "ACCUMULATE"}, PatternReq: PatternAny, Result: "ACCUMULATE",
		RequiresNotPurchased: true},
	{Order: 4, Check: CheckSignal, Signals: []string{"COMPOUNDER", "FAIR VALUE"}, Result: "BUY CORE",
		RequiresNotPurchased: true},
	{Order: 5, Check: CheckSignal, Signals: []string{"AVOID", "STOP OUT"}, Result: "AVOID",
		RequiresNotPurchased: true},
	{Order: 6, Check: CheckPurchased, Result: "HOLD CORE",
		RequiresPurchased: true},
	{Order: 7, Check: CheckDefault, Result: "WATCH"},
}
