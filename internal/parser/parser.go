// Package parser implements a recursive-descent, precedence-climbing
// parser that turns a lexer.Token stream into the tagged ast.Node tree
// internal/assembler consumes (spec.md §6).
//
// Grounded on the teacher's pkg/parser/parser.go (one method per grammar
// production, a precedence-climbing expression parser) and
// pkg/parser/errors.go (parser errors carry a line number and message,
// matching how vexc's other passes report diagnostics).
package parser

import (
	"fmt"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/lexer"
)

// Error is a syntax error: the one diagnostic kind spec.md §7 marks as
// coming from outside the core (the lexer/parser), reported the same
// file:line shape as every other diagnostic kind.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Message) }

// Parser consumes a fixed token slice with one token of lookahead.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse tokenizes and parses src into the TagFile root AST node
// described in spec.md §6.
func Parse(src string) (*ast.Node, error) {
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: toks}
	return p.parseFile()
}

func (p *Parser) cur() lexer.Token  { return p.tokens[p.pos] }
func (p *Parser) line() int         { return p.cur().Line }
func (p *Parser) atEnd() bool       { return p.cur().Type == lexer.EOF }
func (p *Parser) peekType() lexer.Type {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1].Type
	}
	return lexer.EOF
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(t lexer.Type) bool { return p.cur().Type == t }

func (p *Parser) match(t lexer.Type) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t lexer.Type, what string) (lexer.Token, error) {
	if !p.check(t) {
		return lexer.Token{}, &Error{Line: p.line(), Message: fmt.Sprintf("expected %s, got %q", what, p.cur().Literal)}
	}
	return p.advance(), nil
}

// ---- top level ----

func (p *Parser) parseFile() (*ast.Node, error) {
	line := p.line()
	class, err := p.parseClass()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, &Error{Line: p.line(), Message: "unexpected trailing input after class body"}
	}
	return ast.NewNode(ast.TagFile, line, "", class), nil
}

func (p *Parser) parseClass() (*ast.Node, error) {
	line := p.line()
	if _, err := p.expect(lexer.CLASS, "'class'"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.IDENT, "class name"); if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE, "'{'"); err != nil {
		return nil, err
	}

	var items *ast.Node
	var tail *ast.Node
	for !p.check(lexer.RBRACE) && !p.atEnd() {
		member, err := p.parseClassMember()
		if err != nil {
			return nil, err
		}
		cell := ast.NewNode(ast.TagClassBodyItemList, member.Line, "", member, nil)
		if items == nil {
			items = cell
		} else {
			tail.Children[1] = cell
		}
		tail = cell
	}
	if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.TagClassDefinition, line, nameTok.Literal, nil, items), nil
}

func (p *Parser) parseClassMember() (*ast.Node, error) {
	line := p.line()
	var retType *ast.Node
	var err error
	if p.check(lexer.VOID) {
		p.advance()
		retType = ast.NewNode(ast.TagVoid, line, "")
	} else {
		retType, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	nameTok, err := p.expect(lexer.IDENT, "identifier"); if err != nil {
		return nil, err
	}

	if p.check(lexer.LPAREN) {
		args, err := p.parseArgDeclList()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return ast.NewNode(ast.TagMethodDefinition, line, nameTok.Literal, retType, args, body), nil
	}

	var init *ast.Node
	if p.match(lexer.ASSIGN) {
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.TagFieldDeclaration, line, nameTok.Literal, retType, nil, init), nil
}

func (p *Parser) parseArgDeclList() (*ast.Node, error) {
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var head, tail *ast.Node
	for !p.check(lexer.RPAREN) {
		line := p.line()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		nameTok, err := p.expect(lexer.IDENT, "argument name"); if err != nil {
			return nil, err
		}
		arg := ast.NewNode(ast.TagArg, line, nameTok.Literal, t)
		cell := ast.NewNode(ast.TagArgDeclList, line, "", arg, nil)
		if head == nil {
			head = cell
		} else {
			tail.Children[1] = cell
		}
		tail = cell
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return head, nil
}

// ---- types ----

var primitiveTypeTokens = map[lexer.Type]string{
	lexer.BOOL: "Bool", lexer.BYTE: "Byte", lexer.INT: "Int",
	lexer.LONG: "Long", lexer.FLOAT: "Float", lexer.DOUBLE: "Double",
}

func (p *Parser) parseType() (*ast.Node, error) {
	line := p.line()
	var base *ast.Node
	if p.check(lexer.AUTO) {
		p.advance()
		base = ast.NewNode(ast.TagAuto, line, "")
	} else if name, ok := primitiveTypeTokens[p.cur().Type]; ok {
		p.advance()
		base = ast.NewNode(ast.TagType, line, name)
	} else if p.check(lexer.IDENT) {
		tok := p.advance()
		base = ast.NewNode(ast.TagType, line, tok.Literal)
	} else {
		return nil, &Error{Line: line, Message: fmt.Sprintf("expected a type, got %q", p.cur().Literal)}
	}
	for p.check(lexer.LBRACKET) && p.peekType() == lexer.RBRACKET {
		p.advance()
		p.advance()
		base = ast.NewNode(ast.TagTypeArray, line, "", base)
	}
	return base, nil
}

// ---- statements ----

func (p *Parser) parseBlock() (*ast.Node, error) {
	line := p.line()
	if _, err := p.expect(lexer.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	stmts, err := p.parseStmtListUntil(lexer.RBRACE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.TagBlock, line, "", stmts), nil
}

// parseStmtListUntil parses statements into a cons list (Child(0)=stmt,
// Child(1)=next) until the next token is until or EOF.
func (p *Parser) parseStmtListUntil(until lexer.Type) (*ast.Node, error) {
	var head, tail *ast.Node
	for !p.check(until) && !p.atEnd() {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		cell := ast.NewNode(ast.TagBlock, s.Line, "", s, nil) // reuse TagBlock as the cons-cell tag for statement lists
		if head == nil {
			head = cell
		} else {
			tail.Children[1] = cell
		}
		tail = cell
	}
	return head, nil
}

func (p *Parser) parseStmt() (*ast.Node, error) {
	line := p.line()
	switch p.cur().Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.SEMI:
		p.advance()
		return ast.NewNode(ast.TagEmpty, line, ""), nil
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.DO:
		return p.parseDoWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.SWITCH:
		return p.parseSwitch()
	case lexer.BREAK:
		return p.parseBreakContinue(ast.TagBreak)
	case lexer.CONTINUE:
		return p.parseBreakContinue(ast.TagContinue)
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.VAR:
		return p.parseVarDeclStmt()
	default:
		if isTypeStart(p.cur().Type) && p.peekType() == lexer.IDENT {
			return p.parseVarDeclStmt()
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
			return nil, err
		}
		return ast.NewNode(ast.TagExprStmt, line, "", expr), nil
	}
}

func isTypeStart(t lexer.Type) bool {
	switch t {
	case lexer.BOOL, lexer.BYTE, lexer.INT, lexer.LONG, lexer.FLOAT, lexer.DOUBLE:
		return true
	default:
		return false
	}
}

// parseVarDeclStmt parses `var`/typed declarations, including comma-
// separated declarator lists, terminated by ';'. A single declarator
// returns a bare TagVarDeclaration; more than one is wrapped in a
// TagVarDeclarationList (chained through the fourth child slot when
// there are more than four declarators, since ast.Node carries a fixed
// four-child array).
func (p *Parser) parseVarDeclStmt() (*ast.Node, error) {
	line := p.line()
	var typeNode *ast.Node
	var err error
	if p.match(lexer.VAR) {
		typeNode = ast.NewNode(ast.TagAuto, line, "")
	} else {
		typeNode, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	var decls []*ast.Node
	for {
		declLine := p.line()
		nameTok, err := p.expect(lexer.IDENT, "variable name"); if err != nil {
			return nil, err
		}
		var init *ast.Node
		if p.match(lexer.ASSIGN) {
			init, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		decls = append(decls, ast.NewNode(ast.TagVarDeclaration, declLine, nameTok.Literal, typeNode, nil, init))
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}
	if len(decls) == 1 {
		return decls[0], nil
	}
	return buildVarDeclList(line, decls), nil
}

func buildVarDeclList(line int, decls []*ast.Node) *ast.Node {
	if len(decls) <= 4 {
		return ast.NewNode(ast.TagVarDeclarationList, line, "", decls...)
	}
	head := decls[:3]
	rest := buildVarDeclList(line, decls[3:])
	return ast.NewNode(ast.TagVarDeclarationList, line, "", append(append([]*ast.Node{}, head...), rest)...)
}

func (p *Parser) parseIf() (*ast.Node, error) {
	line := p.line()
	p.advance()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if p.match(lexer.ELSE) {
		els, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return ast.NewNode(ast.TagIfElse, line, "", cond, then, els), nil
	}
	return ast.NewNode(ast.TagIf, line, "", cond, then), nil
}

func (p *Parser) parseWhile() (*ast.Node, error) {
	line := p.line()
	p.advance()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return ast.NewNode(ast.TagWhile, line, "", cond, body), nil
}

func (p *Parser) parseDoWhile() (*ast.Node, error) {
	line := p.line()
	p.advance()
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.WHILE, "'while'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.TagDoWhile, line, "", body, cond), nil
}

func (p *Parser) parseFor() (*ast.Node, error) {
	line := p.line()
	p.advance()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}

	// for-in: ('var' | Type) IDENT 'in' Expr ')'
	if (p.check(lexer.VAR) || isTypeStart(p.cur().Type) || (p.check(lexer.IDENT) && p.peekType() == lexer.IDENT)) {
		save := p.pos
		declLine := p.line()
		var typeNode *ast.Node
		var err error
		if p.match(lexer.VAR) {
			typeNode = ast.NewNode(ast.TagAuto, declLine, "")
		} else {
			typeNode, err = p.parseType()
		}
		if err == nil && p.check(lexer.IDENT) {
			nameTok := p.advance()
			if p.match(lexer.IN) {
				declared := ast.NewNode(ast.TagVarDeclaration, declLine, nameTok.Literal, typeNode, nil, nil)
				coll, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
					return nil, err
				}
				body, err := p.parseStmt()
				if err != nil {
					return nil, err
				}
				return ast.NewNode(ast.TagForIn, line, "", declared, coll, body), nil
			}
		}
		p.pos = save
	}

	var init *ast.Node
	var err error
	if p.check(lexer.SEMI) {
		init = ast.NewNode(ast.TagEmpty, p.line(), "")
		p.advance()
	} else {
		init, err = p.parseStmt() // consumes the trailing ';' itself
		if err != nil {
			return nil, err
		}
	}

	var cond *ast.Node
	if !p.check(lexer.SEMI) {
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}

	var step *ast.Node
	if !p.check(lexer.RPAREN) {
		step, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return ast.NewNode(ast.TagFor, line, "", init, cond, step, body), nil
}

func (p *Parser) parseSwitch() (*ast.Node, error) {
	line := p.line()
	p.advance()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	scrut, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE, "'{'"); err != nil {
		return nil, err
	}

	var head, tail *ast.Node
	for !p.check(lexer.RBRACE) && !p.atEnd() {
		caseLine := p.line()
		var item *ast.Node
		if p.match(lexer.DEFAULT) {
			if _, err := p.expect(lexer.COLON, "':'"); err != nil {
				return nil, err
			}
			body, err := p.parseStmtListUntil2(lexer.CASE, lexer.DEFAULT, lexer.RBRACE)
			if err != nil {
				return nil, err
			}
			item = ast.NewNode(ast.TagDefault, caseLine, "", body)
		} else {
			if _, err := p.expect(lexer.CASE, "'case'"); err != nil {
				return nil, err
			}
			valTok, err := p.expect(lexer.INT_LIT, "integer case label"); if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.COLON, "':'"); err != nil {
				return nil, err
			}
			body, err := p.parseStmtListUntil2(lexer.CASE, lexer.DEFAULT, lexer.RBRACE)
			if err != nil {
				return nil, err
			}
			valNode := ast.NewNode(ast.TagIntLit, caseLine, valTok.Literal)
			item = ast.NewNode(ast.TagCase, caseLine, "", valNode, body)
		}
		cell := ast.NewNode(ast.TagCaseList, caseLine, "", item, nil)
		if head == nil {
			head = cell
		} else {
			tail.Children[1] = cell
		}
		tail = cell
	}
	if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.TagSwitch, line, "", scrut, head), nil
}

// parseStmtListUntil2 parses statements into a cons list stopping before
// any of the three given token types (used for switch-case bodies, which
// end at the next case/default/closing brace without their own
// delimiter).
func (p *Parser) parseStmtListUntil2(a, b, c lexer.Type) (*ast.Node, error) {
	var head, tail *ast.Node
	for !p.check(a) && !p.check(b) && !p.check(c) && !p.atEnd() {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		cell := ast.NewNode(ast.TagBlock, s.Line, "", s, nil)
		if head == nil {
			head = cell
		} else {
			tail.Children[1] = cell
		}
		tail = cell
	}
	return head, nil
}

func (p *Parser) parseBreakContinue(tag ast.Tag) (*ast.Node, error) {
	line := p.line()
	p.advance()
	var count *ast.Node
	if p.check(lexer.INT_LIT) || p.check(lexer.LONG_LIT) {
		tok := p.advance()
		litTag := ast.TagIntLit
		if tok.Type == lexer.LONG_LIT {
			litTag = ast.TagLongLit
		}
		count = ast.NewNode(litTag, line, tok.Literal)
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}
	return ast.NewNode(tag, line, "", count), nil
}

func (p *Parser) parseReturn() (*ast.Node, error) {
	line := p.line()
	p.advance()
	var val *ast.Node
	if !p.check(lexer.SEMI) {
		var err error
		val, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.TagReturn, line, "", val), nil
}

// ---- expressions ----

func (p *Parser) parseExpr() (*ast.Node, error) { return p.parseAssignment() }

var assignTags = map[lexer.Type]ast.Tag{
	lexer.ASSIGN:         ast.TagAssign,
	lexer.PLUS_ASSIGN:    ast.TagAddAssign,
	lexer.MINUS_ASSIGN:   ast.TagSubAssign,
	lexer.STAR_ASSIGN:    ast.TagMulAssign,
	lexer.SLASH_ASSIGN:   ast.TagDivAssign,
	lexer.PERCENT_ASSIGN: ast.TagModAssign,
	lexer.AMP_ASSIGN:     ast.TagAndAssign,
	lexer.PIPE_ASSIGN:    ast.TagOrAssign,
	lexer.CARET_ASSIGN:   ast.TagXorAssign,
	lexer.SHL_ASSIGN:     ast.TagShlAssign,
	lexer.SHR_ASSIGN:     ast.TagShrAssign,
}

func (p *Parser) parseAssignment() (*ast.Node, error) {
	lhs, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if tag, ok := assignTags[p.cur().Type]; ok {
		line := p.line()
		p.advance()
		rhs, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return ast.NewNode(tag, line, "", lhs, rhs), nil
	}
	return lhs, nil
}

func (p *Parser) parseTernary() (*ast.Node, error) {
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.match(lexer.QUESTION) {
		line := p.line()
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON, "':'"); err != nil {
			return nil, err
		}
		els, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return ast.NewNode(ast.TagTernary, line, "", cond, then, els), nil
	}
	return cond, nil
}

// binaryLevel parses a left-associative binary level given the next
// tighter-binding parse function and a table of matched token→tag pairs.
func (p *Parser) binaryLevel(next func() (*ast.Node, error), ops map[lexer.Type]ast.Tag) (*ast.Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		tag, ok := ops[p.cur().Type]
		if !ok {
			return left, nil
		}
		line := p.line()
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = ast.NewNode(tag, line, "", left, right)
	}
}

func (p *Parser) parseLogicalOr() (*ast.Node, error) {
	return p.binaryLevel(p.parseLogicalAnd, map[lexer.Type]ast.Tag{lexer.OR_OR: ast.TagOr})
}
func (p *Parser) parseLogicalAnd() (*ast.Node, error) {
	return p.binaryLevel(p.parseBitOr, map[lexer.Type]ast.Tag{lexer.AND_AND: ast.TagAnd})
}
func (p *Parser) parseBitOr() (*ast.Node, error) {
	return p.binaryLevel(p.parseBitXor, map[lexer.Type]ast.Tag{lexer.PIPE: ast.TagBitOr})
}
func (p *Parser) parseBitXor() (*ast.Node, error) {
	return p.binaryLevel(p.parseBitAnd, map[lexer.Type]ast.Tag{lexer.CARET: ast.TagBitXor})
}
func (p *Parser) parseBitAnd() (*ast.Node, error) {
	return p.binaryLevel(p.parseEquality, map[lexer.Type]ast.Tag{lexer.AMP: ast.TagBitAnd})
}
func (p *Parser) parseEquality() (*ast.Node, error) {
	return p.binaryLevel(p.parseRelational, map[lexer.Type]ast.Tag{lexer.EQ_EQ: ast.TagEq, lexer.NOT_EQ: ast.TagNe})
}
func (p *Parser) parseRelational() (*ast.Node, error) {
	return p.binaryLevel(p.parseShift, map[lexer.Type]ast.Tag{
		lexer.LT: ast.TagLt, lexer.LE: ast.TagLe, lexer.GT: ast.TagGt, lexer.GE: ast.TagGe,
	})
}
func (p *Parser) parseShift() (*ast.Node, error) {
	return p.binaryLevel(p.parseAdditive, map[lexer.Type]ast.Tag{lexer.SHL: ast.TagShl, lexer.SHR: ast.TagShr})
}
func (p *Parser) parseAdditive() (*ast.Node, error) {
	return p.binaryLevel(p.parseMultiplicative, map[lexer.Type]ast.Tag{lexer.PLUS: ast.TagAdd, lexer.MINUS: ast.TagSub})
}
func (p *Parser) parseMultiplicative() (*ast.Node, error) {
	return p.binaryLevel(p.parseUnary, map[lexer.Type]ast.Tag{
		lexer.STAR: ast.TagMul, lexer.SLASH: ast.TagDiv, lexer.PERCENT: ast.TagMod,
	})
}

func (p *Parser) parseUnary() (*ast.Node, error) {
	line := p.line()
	switch p.cur().Type {
	case lexer.MINUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewNode(ast.TagNeg, line, "", operand), nil
	case lexer.BANG:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewNode(ast.TagNot, line, "", operand), nil
	case lexer.TILDE:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewNode(ast.TagInvert, line, "", operand), nil
	case lexer.PLUS_PLUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewNode(ast.TagPreInc, line, "", operand), nil
	case lexer.MINUS_MINUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewNode(ast.TagPreDec, line, "", operand), nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (*ast.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		line := p.line()
		switch p.cur().Type {
		case lexer.PLUS_PLUS:
			p.advance()
			expr = ast.NewNode(ast.TagPostInc, line, "", expr)
		case lexer.MINUS_MINUS:
			p.advance()
			expr = ast.NewNode(ast.TagPostDec, line, "", expr)
		case lexer.LBRACKET:
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			expr = ast.NewNode(ast.TagArrayGet, line, "", expr, idx)
		case lexer.DOT:
			p.advance()
			if _, err := p.expect(lexer.LENGTH, "'length'"); err != nil {
				return nil, err
			}
			expr = ast.NewNode(ast.TagLength, line, "", expr)
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (*ast.Node, error) {
	line := p.line()
	tok := p.cur()
	switch tok.Type {
	case lexer.INT_LIT:
		p.advance()
		return ast.NewNode(ast.TagIntLit, line, tok.Literal), nil
	case lexer.LONG_LIT:
		p.advance()
		return ast.NewNode(ast.TagLongLit, line, tok.Literal), nil
	case lexer.FLOAT_LIT:
		p.advance()
		return ast.NewNode(ast.TagFloatLit, line, tok.Literal), nil
	case lexer.DOUBLE_LIT:
		p.advance()
		return ast.NewNode(ast.TagDoubleLit, line, tok.Literal), nil
	case lexer.TRUE:
		p.advance()
		return ast.NewNode(ast.TagBoolLit, line, "true"), nil
	case lexer.FALSE:
		p.advance()
		return ast.NewNode(ast.TagBoolLit, line, "false"), nil
	case lexer.NEW:
		return p.parseNew()
	case lexer.LBRACKET:
		return p.parseArrayLit()
	case lexer.LPAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.IDENT:
		p.advance()
		if p.check(lexer.LPAREN) {
			return p.parseCallArgs(line, tok.Literal)
		}
		return ast.NewNode(ast.TagIdentifier, line, tok.Literal), nil
	default:
		return nil, &Error{Line: line, Message: fmt.Sprintf("unexpected token %q", tok.Literal)}
	}
}

func (p *Parser) parseCallArgs(line int, name string) (*ast.Node, error) {
	p.advance() // '('
	var head, tail *ast.Node
	for !p.check(lexer.RPAREN) {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cell := ast.NewNode(ast.TagArgList, arg.Line, "", arg, nil)
		if head == nil {
			head = cell
		} else {
			tail.Children[1] = cell
		}
		tail = cell
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	nameNode := ast.NewNode(ast.TagIdentifier, line, name)
	return ast.NewNode(ast.TagCall, line, "", nameNode, head), nil
}

func (p *Parser) parseNew() (*ast.Node, error) {
	line := p.line()
	p.advance() // 'new'
	t, err := p.parseBareType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACKET, "'['"); err != nil {
		return nil, err
	}
	size, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.TagNew, line, "", t, size), nil
}

// parseBareType parses a single non-array type name for use right after
// 'new' (the array brackets there belong to the allocation size, not the
// element type suffix).
func (p *Parser) parseBareType() (*ast.Node, error) {
	line := p.line()
	if name, ok := primitiveTypeTokens[p.cur().Type]; ok {
		p.advance()
		return ast.NewNode(ast.TagType, line, name), nil
	}
	tok, err := p.expect(lexer.IDENT, "a type name")
	if err != nil {
		return nil, err
	}
	return ast.NewNode(ast.TagType, line, tok.Literal), nil
}

// parseArrayLit builds a TagArrayLit node whose single child is a
// TagArgList cons-list (mirroring parseCallArgs): a four-slot Node
// cannot hold an arbitrary-arity element list directly, so array
// literals of any length chain through Child(1) the same way call
// arguments do.
func (p *Parser) parseArrayLit() (*ast.Node, error) {
	line := p.line()
	p.advance() // '['
	var head, tail *ast.Node
	for !p.check(lexer.RBRACKET) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cell := ast.NewNode(ast.TagArgList, e.Line, "", e, nil)
		if head == nil {
			head = cell
		} else {
			tail.Children[1] = cell
		}
		tail = cell
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return ast.NewNode(ast.TagArrayLit, line, "", head), nil
}
